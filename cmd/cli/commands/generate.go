package commands

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/deskrota/pkg/instance"
)

// GenerateCmd creates the generate command
func GenerateCmd(app *AppContext) *cobra.Command {
	opts := instance.DefaultGenerateOptions()
	var (
		seed  int64
		rule  string
		start string
	)

	cmd := &cobra.Command{
		Use:   "generate <out.json>",
		Short: "Generate a random instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Days come from a recurrence rule when one is given
			if rule == "" {
				rule = app.Cfg.Horizon.RRule
			}
			if start == "" {
				start = app.Cfg.Horizon.Start
			}
			if rule != "" {
				days, err := horizonDays(rule, start)
				if err != nil {
					return err
				}
				opts.Days = days
			}

			inst, err := instance.Generate(opts, rand.New(rand.NewSource(seed)))
			if err != nil {
				return err
			}

			if err := instance.Write(args[0], inst); err != nil {
				return err
			}
			app.Logger.Info("Instance generated",
				zap.String("path", args[0]),
				zap.Int("employees", len(inst.Employees)),
				zap.Int("desks", len(inst.Desks)),
				zap.Int("days", len(inst.Days)))

			// Display results
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✓ Instance written to %s\n\n", args[0])
			fmt.Fprintf(out, "Employees: %d\n", len(inst.Employees))
			fmt.Fprintf(out, "Desks:     %d\n", len(inst.Desks))
			fmt.Fprintf(out, "Groups:    %d\n", len(inst.Groups))
			fmt.Fprintf(out, "Zones:     %d\n", len(inst.Zones))
			if n := len(inst.Days); n > 0 {
				fmt.Fprintf(out, "Days:      %d (%s .. %s)\n", n, inst.Days[0], inst.Days[n-1])
			}
			fmt.Fprintln(out)

			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Employees, "employees", opts.Employees, "Number of employees")
	cmd.Flags().IntVar(&opts.Desks, "desks", opts.Desks, "Number of desks")
	cmd.Flags().IntVar(&opts.Zones, "zones", opts.Zones, "Number of zones")
	cmd.Flags().IntVar(&opts.GroupSize, "group-size", opts.GroupSize, "Employees per group")
	cmd.Flags().IntVar(&opts.Preferences, "preferences", opts.Preferences, "Preferred desks per employee")
	cmd.Flags().Float64Var(&opts.AttendanceRate, "attendance", opts.AttendanceRate, "Probability an employee is present on a day")
	cmd.Flags().StringSliceVar(&opts.Days, "days", opts.Days, "Day identifiers")
	cmd.Flags().Int64VarP(&seed, "seed", "s", 1, "Random seed")
	cmd.Flags().StringVar(&rule, "rrule", "", "RFC 5545 recurrence rule for the days, e.g. FREQ=WEEKLY;BYDAY=MO,WE,FR;COUNT=12")
	cmd.Flags().StringVar(&start, "start", "", "First day (YYYY-MM-DD) when the rule has no DTSTART")

	return cmd
}

// horizonDays expands a recurrence rule into day identifiers
func horizonDays(rule, start string) ([]string, error) {
	dtstart := time.Now().UTC().Truncate(24 * time.Hour)
	if start != "" {
		var err error
		dtstart, err = time.Parse("2006-01-02", start)
		if err != nil {
			return nil, fmt.Errorf("start must be YYYY-MM-DD: %w", err)
		}
	}

	days, err := instance.HorizonDays(rule, dtstart)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("rule %q produces no days", rule)
	}
	return days, nil
}
