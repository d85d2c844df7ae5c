package habits

import (
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/habitlog/internal/cli"
	"github.com/julianstephens/habitlog/internal/habits"
	"github.com/julianstephens/habitlog/internal/utils"
)

type HabitCmd struct {
	Add  HabitAddCmd  `cmd:"" help:"Create a habit."`
	List HabitListCmd `cmd:"" help:"List a user's habits."`
	Log  HabitLogCmd  `cmd:"" help:"Record hours for a day."`
	Logs HabitLogsCmd `cmd:"" help:"Show recent logs for a habit."`
}

type HabitAddCmd struct {
	User        string `help:"Owner username." required:""`
	Name        string `arg:"" help:"Habit name."`
	Description string `help:"Description."`
	Target      string `help:"Weekly target in hours." default:"0"`
	Category    string `help:"Category." default:"General"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	user, err := ctx.LookupUser(c.User)
	if err != nil {
		return err
	}

	habit, err := ctx.HabitService().CreateHabit(ctx, user.ID, habits.HabitInput{
		Name:        c.Name,
		Description: c.Description,
		TargetHours: c.Target,
		Category:    c.Category,
	})
	if err != nil {
		return err
	}

	ctx.Printf("Added habit %q (id %d)\n", habit.Name, habit.ID)
	return nil
}

type HabitListCmd struct {
	User string `help:"Owner username." required:""`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	user, err := ctx.LookupUser(c.User)
	if err != nil {
		return err
	}

	list, err := ctx.HabitService().ListHabits(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	t := cli.NewTable("ID", "Name", "Category", "Target (h/week)")
	for _, h := range list {
		t.Row(strconv.FormatInt(h.ID, 10), h.Name, h.Category, fmt.Sprintf("%.1f", h.TargetHours))
	}
	ctx.Println(t.String())
	return nil
}

type HabitLogCmd struct {
	User  string `help:"Owner username." required:""`
	ID    int64  `arg:"" help:"Habit id."`
	Date  string `help:"Day to log (YYYY-MM-DD). Defaults to today."`
	Hours string `help:"Hours spent." required:""`
	Notes string `help:"Notes for the day."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	user, err := ctx.LookupUser(c.User)
	if err != nil {
		return err
	}

	log, err := ctx.HabitService().LogHabit(ctx, user.ID, c.ID, habits.LogInput{
		Date:  c.Date,
		Hours: c.Hours,
		Notes: c.Notes,
	})
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()
	ctx.Printf("Logged %.1f h on %s\n", log.Hours, log.Date)
	return nil
}

type HabitLogsCmd struct {
	User string `help:"Owner username." required:""`
	ID   int64  `arg:"" help:"Habit id."`
	Days int    `help:"Number of days to show, today inclusive." default:"7"`
}

func (c *HabitLogsCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1, got %d", c.Days)
	}
	user, err := ctx.LookupUser(c.User)
	if err != nil {
		return err
	}

	svc := ctx.HabitService()
	habit, err := svc.GetHabit(ctx, user.ID, c.ID)
	if err != nil {
		return err
	}

	today, err := utils.ParseDay(svc.Today(), time.UTC)
	if err != nil {
		return err
	}
	start, end := utils.TrailingWindow(today, c.Days)
	logs, err := svc.ListLogs(ctx, user.ID, habit.ID, utils.FormatDay(start), utils.FormatDay(end))
	if err != nil {
		return err
	}

	ctx.Println(cli.TitleStyle.Render(fmt.Sprintf("%s: last %d days", habit.Name, c.Days)))
	if len(logs) == 0 {
		ctx.Println(cli.MutedStyle.Render("No logs in this range."))
		return nil
	}

	t := cli.NewTable("Date", "Hours", "Notes")
	total := 0.0
	for _, l := range logs {
		t.Row(l.Date, fmt.Sprintf("%.1f", l.Hours), l.Notes)
		total += l.Hours
	}
	ctx.Println(t.String())
	ctx.Printf("Total: %.1f h\n", total)
	return nil
}
