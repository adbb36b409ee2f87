package instance

import (
	"fmt"
	"math/rand"

	"github.com/jakechorley/deskrota/pkg/core/model"
)

// GenerateOptions describes the shape of a random instance
type GenerateOptions struct {
	Employees int `yaml:"employees" validate:"gte=0"`
	Desks     int `yaml:"desks" validate:"gte=0"`
	Zones     int `yaml:"zones" validate:"gte=1"`

	// GroupSize is the size of each group; leftover employees stay ungrouped
	GroupSize int `yaml:"groupSize" validate:"gte=0"`

	// Preferences is the length of each employee's preference list
	Preferences int `yaml:"preferences" validate:"gte=0"`

	// AttendanceRate is the probability an employee attends a given day.
	// A rate of 1 leaves attendance unset so everyone attends every day.
	AttendanceRate float64 `yaml:"attendanceRate" validate:"gte=0,lte=1"`

	// Days are the day identifiers of the horizon
	Days []string `yaml:"days" validate:"unique,dive,required"`
}

// DefaultGenerateOptions returns a small office with a working week
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Employees:      20,
		Desks:          16,
		Zones:          3,
		GroupSize:      4,
		Preferences:    3,
		AttendanceRate: 0.8,
		Days:           []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
	}
}

// Generate builds a random, valid instance. Desks are dealt round-robin into
// zones, employees are chunked into groups in order, and preferences favour the
// zone where the group's first member's preferred desks lie.
func Generate(opts GenerateOptions, rng *rand.Rand) (*model.Instance, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid generate options: %w", err)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is nil")
	}

	data := model.InstanceData{
		Employees:   ids("E", opts.Employees),
		Desks:       ids("D", opts.Desks),
		Days:        append([]string(nil), opts.Days...),
		Preferences: make(map[string][]string),
	}

	// Zones
	zoneIDs := ids("Z", opts.Zones)
	zoneDesks := make([][]string, opts.Zones)
	for i, desk := range data.Desks {
		zoneDesks[i%opts.Zones] = append(zoneDesks[i%opts.Zones], desk)
	}
	for i, id := range zoneIDs {
		data.Zones = append(data.Zones, model.Zone{ID: id, Desks: zoneDesks[i]})
	}

	// Groups
	groupZone := make(map[string]int)
	if opts.GroupSize > 0 {
		groupIdx := 0
		for start := 0; start+opts.GroupSize <= len(data.Employees); start += opts.GroupSize {
			groupIdx++
			id := fmt.Sprintf("G%02d", groupIdx)
			members := append([]string(nil), data.Employees[start:start+opts.GroupSize]...)
			data.Groups = append(data.Groups, model.Group{ID: id, Members: members})
			zone := rng.Intn(opts.Zones)
			for _, m := range members {
				groupZone[m] = zone
			}
		}
	}

	// Preferences: mostly from the group's home zone, otherwise anywhere
	for _, employee := range data.Employees {
		if opts.Preferences == 0 || len(data.Desks) == 0 {
			continue
		}
		pool := data.Desks
		if zone, ok := groupZone[employee]; ok && len(zoneDesks[zone]) > 0 {
			pool = zoneDesks[zone]
		}
		data.Preferences[employee] = sample(pool, data.Desks, opts.Preferences, rng)
	}

	// Attendance
	if opts.AttendanceRate < 1 {
		data.Attendance = make(map[string][]string)
		for _, employee := range data.Employees {
			days := []string{}
			for _, day := range data.Days {
				if rng.Float64() < opts.AttendanceRate {
					days = append(days, day)
				}
			}
			data.Attendance[employee] = days
		}
	}

	return model.NewInstance(data)
}

// sample draws up to n distinct desks, first from pool then from all
func sample(pool, all []string, n int, rng *rand.Rand) []string {
	picked := make([]string, 0, n)
	seen := make(map[string]bool, n)

	for _, source := range [][]string{pool, all} {
		order := rng.Perm(len(source))
		for _, i := range order {
			if len(picked) == n {
				return picked
			}
			if seen[source[i]] {
				continue
			}
			seen[source[i]] = true
			picked = append(picked, source[i])
		}
	}
	return picked
}

func ids(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%02d", prefix, i+1)
	}
	return out
}
