package constants

// HabitKind represents whether a habit is being built up or cut down
type HabitKind string

// ScheduleType represents the rule that decides which days a habit is due
type ScheduleType string

const (
	AppName            = "tally"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/tally/tally.db"
	Version            = "v0.1.0"

	// DateFormat is the canonical date key format (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// GuestOwnerID is the owner used when no account is signed in
	GuestOwnerID = "guest"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "tally-"
	BackupFileSuffix = ".db"

	// Environment variables
	EnvConnectionString = "TALLY_DB_CONNECTION"

	// Habit kinds
	HabitKindFormation HabitKind = "formation"
	HabitKindBreaking  HabitKind = "breaking"

	// Schedule types
	ScheduleDaily         ScheduleType = "daily"
	ScheduleWeekly        ScheduleType = "weekly"
	ScheduleWeekdays      ScheduleType = "weekdays"
	ScheduleTimesPerWeek  ScheduleType = "times-per-week"
	ScheduleTimesPerMonth ScheduleType = "times-per-month"
	ScheduleEveryNDays    ScheduleType = "every-n-days"

	// Settings keys
	SettingTimezone = "timezone"
	SettingOwnerID  = "owner_id"

	// DefaultLogDays is the number of days shown by the history grid
	DefaultLogDays = 14
)
