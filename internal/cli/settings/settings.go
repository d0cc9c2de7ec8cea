package settings

import (
	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/utils"
)

type SettingsCmd struct {
	Timezone string `help:"Set the IANA time zone date keys are computed in ('Local' for the system zone)."`
	Owner    string `help:"Set the account id that owns habits."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	if c.Timezone == "" && c.Owner == "" {
		ctx.Printf("%s\n", cli.TitleStyle.Render("Settings"))
		ctx.Printf("  timezone: %s\n", settings.Timezone)
		ctx.Printf("  owner:    %s\n", settings.OwnerID)
		return nil
	}

	if c.Timezone != "" {
		if !utils.ValidateTimezone(c.Timezone) {
			return errors.Invalid("unknown time zone %q", c.Timezone)
		}
		settings.Timezone = c.Timezone
	}
	if c.Owner != "" {
		settings.OwnerID = c.Owner
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return err
	}
	ctx.Printf("✓ Settings updated\n")
	return nil
}
