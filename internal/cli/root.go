package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/tally/internal/backup"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/habits"
	"github.com/julianstephens/tally/internal/ledger"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/utils"
)

// Context carries the wired components every command runs against
type Context struct {
	Store storage.Provider
	// Timezone and Owner override the stored settings when set
	Timezone string
	Owner    string
	Out      io.Writer

	now    func() time.Time
	loc    *time.Location
	owner  string
	ledger *ledger.Ledger
	habits *habits.Service
}

// NewContext creates a context over store writing to stdout
func NewContext(store storage.Provider) *Context {
	return &Context{
		Store: store,
		Out:   os.Stdout,
		now:   time.Now,
	}
}

// Open loads the store and wires the ledger and habit service
func (c *Context) Open() error {
	if err := c.Store.Load(); err != nil {
		return err
	}
	return c.Setup()
}

// Setup resolves the time zone and owner and builds the components. The
// store must already be loaded or initialized.
func (c *Context) Setup() error {
	settings, err := c.Store.GetSettings()
	if err != nil {
		logger.Warn("Failed to read settings, using defaults", "error", err)
		settings = models.Settings{}
	}

	tz := settings.Timezone
	if c.Timezone != "" {
		tz = c.Timezone
	}
	loc, err := utils.LoadLocation(tz)
	if err != nil {
		return errors.Invalid("%v", err)
	}

	owner := settings.OwnerID
	if c.Owner != "" {
		owner = c.Owner
	}
	if owner == "" {
		owner = constants.GuestOwnerID
	}

	c.loc = loc
	c.owner = owner
	c.ledger = ledger.New(c.Store, loc)
	c.ledger.SetClock(c.clock)
	c.habits = habits.NewService(c.Store, c.ledger)
	c.habits.SetClock(c.clock)
	c.ledger.OnCompletionChanged(c.announce)

	logger.Debug("Context ready", "timezone", loc.String(), "owner", owner)
	return nil
}

// SetClock replaces "now" for the context and everything it wires
func (c *Context) SetClock(now func() time.Time) {
	c.now = now
}

func (c *Context) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

func (c *Context) Ledger() *ledger.Ledger    { return c.ledger }
func (c *Context) Habits() *habits.Service   { return c.habits }
func (c *Context) Location() *time.Location  { return c.loc }
func (c *Context) OwnerID() string           { return c.owner }
func (c *Context) Today() time.Time          { return utils.StartOfDay(c.clock(), c.loc) }
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

// announce is the completion listener: it tells the user when today's
// completion flips.
func (c *Context) announce(habit models.Habit, change ledger.Change) {
	if change.Entry.Completed {
		c.Printf("%s %s is complete for today\n", SuccessStyle.Render("✓"), habit.Name)
		return
	}
	c.Printf("%s %s is no longer complete for today\n", WarningStyle.Render("↺"), habit.Name)
}

// ResolveHabit finds an active habit of the current owner by id or name
func (c *Context) ResolveHabit(ref string) (models.Habit, error) {
	return c.habits.Resolve(c.owner, ref, false)
}

// ParseDay turns a day argument into midnight in the context's time zone.
// Accepted: "" or "today", "yesterday", "-N" for N days ago, or YYYY-MM-DD.
func (c *Context) ParseDay(s string) (time.Time, error) {
	today := c.Today()
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "" || s == "today":
		return today, nil
	case s == "yesterday":
		return utils.AddDays(today, -1), nil
	case strings.HasPrefix(s, "-"):
		n, err := strconv.Atoi(s[1:])
		if err != nil || n < 0 {
			return time.Time{}, errors.Invalid("invalid day offset %q", s)
		}
		return utils.AddDays(today, -n), nil
	}
	day, err := utils.ParseDateKey(s, c.loc)
	if err != nil {
		return time.Time{}, errors.Invalid("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return day, nil
}

// PerformAutomaticBackup snapshots a SQLite database and only logs failures
func (c *Context) PerformAutomaticBackup() {
	if c.Store.GetConfigPath() == "postgresql" {
		return
	}
	if _, err := backup.NewManager(c.Store.GetConfigPath()).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ParseWeekdays parses a comma-separated list of weekday names, short
// names, or numbers (0=Sunday)
func ParseWeekdays(s string) ([]time.Weekday, error) {
	names := map[string]time.Weekday{}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		full := strings.ToLower(wd.String())
		names[full] = wd
		names[full[:3]] = wd
	}

	var weekdays []time.Weekday
	seen := map[time.Weekday]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		wd, ok := names[part]
		if !ok {
			num, err := strconv.Atoi(part)
			if err != nil || num < 0 || num > 6 {
				return nil, errors.Invalid("invalid weekday: %s", part)
			}
			wd = time.Weekday(num)
		}
		if !seen[wd] {
			seen[wd] = true
			weekdays = append(weekdays, wd)
		}
	}
	if len(weekdays) == 0 {
		return nil, errors.Invalid("no weekdays given")
	}
	return weekdays, nil
}

// ParseWeekdayGoals parses "mon=2,sat=4" into per-weekday goal overrides
func ParseWeekdayGoals(s string) (map[time.Weekday]int, error) {
	goals := map[time.Weekday]int{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, errors.Invalid("invalid weekday goal %q (expected day=amount)", part)
		}
		days, err := ParseWeekdays(name)
		if err != nil {
			return nil, err
		}
		amount, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, errors.Invalid("invalid goal amount %q", value)
		}
		for _, wd := range days {
			goals[wd] = amount
		}
	}
	if len(goals) == 0 {
		return nil, nil
	}
	return goals, nil
}
