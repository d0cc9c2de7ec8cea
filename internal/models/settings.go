package models

// Settings represents application-wide settings
type Settings struct {
	Timezone string `json:"timezone"` // IANA timezone name, or "Local" for the system timezone
	OwnerID  string `json:"owner_id"` // signed-in account id, or "guest"
}
