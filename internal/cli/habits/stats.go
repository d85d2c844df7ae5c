package habits

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitlog/internal/cli"
	"github.com/julianstephens/habitlog/internal/constants"
)

// StatsCmd prints the dashboard numbers and the recent summary for a user
type StatsCmd struct {
	User string `help:"Username." required:""`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	user, err := ctx.LookupUser(c.User)
	if err != nil {
		return err
	}

	svc := ctx.StatsService()
	dash, err := svc.DashboardStats(ctx, user.ID)
	if err != nil {
		return err
	}
	summaries, err := svc.RecentSummary(ctx, user.ID)
	if err != nil {
		return err
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(0, 1)
	ctx.Println(box.Render(lipgloss.JoinVertical(lipgloss.Left,
		cli.TitleStyle.Render(user.Username),
		fmt.Sprintf("Habits:          %d", dash.TotalHabits),
		fmt.Sprintf("Today:           %.1f h (%d habits)", dash.TodayHours, dash.CompletedToday),
		fmt.Sprintf("This week:       %.1f h", dash.WeekHours),
		fmt.Sprintf("Weekly target:   %.1f h", dash.TotalTarget),
	)))

	if len(summaries) == 0 {
		return nil
	}
	ctx.Println(cli.TitleStyle.Render(fmt.Sprintf("Last %d days", constants.RecentWindowDays)))
	t := cli.NewTable("Habit", "Category", "Hours", "Target")
	for _, s := range summaries {
		t.Row(s.Habit.Name, s.Habit.Category, fmt.Sprintf("%.1f", s.TotalHours), fmt.Sprintf("%.1f", s.Habit.TargetHours))
	}
	ctx.Println(t.String())
	return nil
}
