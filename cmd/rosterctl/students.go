package main

import (
	"errors"
	"fmt"

	"records-service/internal/roster"
	"records-service/internal/student"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func (c *cli) listCmd() *cobra.Command {
	var (
		status, sort, year string
		criteria           roster.Criteria
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students, optionally filtered and sorted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if status != "" {
				if criteria.Status, err = student.ParseStatus(status); err != nil {
					return err
				}
			}
			if criteria.Sort, err = roster.ParseSortOrder(sort); err != nil {
				return err
			}

			mgr, err := c.manager(cmd)
			if err != nil {
				return err
			}

			if year == "" {
				printStudents(c.out, mgr.State().Filtered(criteria))
				return nil
			}

			view := mgr.State().SelectYear(year)
			if !view.Visible {
				return nil
			}
			printStudents(c.out, roster.Apply(view.Students, criteria))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&status, "status", "", "PENDING or ACTIVE")
	f.StringVar(&criteria.IDQuery, "id", "", "student ID contains")
	f.StringVar(&criteria.NameQuery, "name", "", "last or first name contains")
	f.StringVar(&criteria.Course, "course", "", "exact course")
	f.StringVar(&sort, "sort", "", "sort by student ID: asc or desc")
	f.StringVar(&year, "year", "", "year level, e.g. \"1st Year\"")
	return cmd
}

func (c *cli) coursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List the distinct courses in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := c.manager(cmd)
			if err != nil {
				return err
			}
			for _, course := range mgr.State().Courses() {
				fmt.Fprintln(c.out, course)
			}
			return nil
		},
	}
}

func (c *cli) gradingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grading",
		Short: "Show the grading roster (active students)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := c.manager(cmd)
			if err != nil {
				return err
			}
			active := mgr.State().ActiveOnly()
			roster.SortByStudentID(active, roster.SortAsc)
			printStudents(c.out, active)
			return nil
		},
	}
}

// studentFlags are shared by add and edit.
type studentFlags struct {
	studentID, lastName, firstName, middleName string
	course, yearLevel, address, status         string
	addr                                       roster.Address
}

func (sf *studentFlags) register(f *pflag.FlagSet) {
	f.StringVar(&sf.studentID, "student-id", "", "student ID")
	f.StringVar(&sf.lastName, "last-name", "", "last name")
	f.StringVar(&sf.firstName, "first-name", "", "first name")
	f.StringVar(&sf.middleName, "middle-name", "", "middle name")
	f.StringVar(&sf.course, "course", "", "course")
	f.StringVar(&sf.yearLevel, "year", "", "year level, e.g. \"1st Year\"")
	f.StringVar(&sf.status, "status", "", "PENDING or ACTIVE")
	f.StringVar(&sf.address, "address", "", "full address (overrides the address parts)")
	f.StringVar(&sf.addr.Street, "street", "", "street")
	f.StringVar(&sf.addr.Barangay, "barangay", "", "barangay")
	f.StringVar(&sf.addr.Municipality, "municipality", "", "city or municipality")
	f.StringVar(&sf.addr.Province, "province", "", "province")
	f.StringVar(&sf.addr.Region, "region", "", "region")
	f.StringVar(&sf.addr.Country, "country", "", "country")
}

// composedAddress reports whether any address flag was set, and the resulting text.
func (sf *studentFlags) composedAddress(f *pflag.FlagSet) (string, bool, error) {
	if f.Changed("address") {
		return sf.address, true, nil
	}
	for _, name := range []string{"street", "barangay", "municipality", "province", "region", "country"} {
		if f.Changed(name) {
			if err := sf.addr.Validate(); err != nil {
				return "", false, err
			}
			return sf.addr.String(), true, nil
		}
	}
	return "", false, nil
}

func (c *cli) addCmd() *cobra.Command {
	var sf studentFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			address, _, err := sf.composedAddress(cmd.Flags())
			if err != nil {
				return err
			}

			s := student.Student{
				StudentID:  sf.studentID,
				LastName:   sf.lastName,
				FirstName:  sf.firstName,
				MiddleName: sf.middleName,
				Course:     sf.course,
				YearLevel:  sf.yearLevel,
				Address:    address,
			}
			if sf.status != "" {
				if s.Status, err = student.ParseStatus(sf.status); err != nil {
					return err
				}
			}

			mgr, err := c.manager(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := c.requestContext(cmd)
			defer cancel()
			created, err := mgr.Create(ctx, s)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Student added: %s (%s)\n", created.StudentID, created.ID)
			return nil
		},
	}

	sf.register(cmd.Flags())
	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	var sf studentFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update the given fields of a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			var patch student.Patch

			set := func(name string, value string, dst **string) {
				if f.Changed(name) {
					v := value
					*dst = &v
				}
			}
			set("student-id", sf.studentID, &patch.StudentID)
			set("last-name", sf.lastName, &patch.LastName)
			set("first-name", sf.firstName, &patch.FirstName)
			set("middle-name", sf.middleName, &patch.MiddleName)
			set("course", sf.course, &patch.Course)
			set("year", sf.yearLevel, &patch.YearLevel)

			address, ok, err := sf.composedAddress(f)
			if err != nil {
				return err
			}
			if ok {
				patch.Address = &address
			}

			if f.Changed("status") {
				st, err := student.ParseStatus(sf.status)
				if err != nil {
					return err
				}
				patch.Status = &st
			}

			if patch == (student.Patch{}) {
				return errors.New("nothing to update: pass at least one field flag")
			}

			mgr, err := c.manager(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := c.requestContext(cmd)
			defer cancel()
			updated, err := mgr.Update(ctx, args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Student updated: %s\n", updated.StudentID)
			return nil
		},
	}

	sf.register(cmd.Flags())
	return cmd
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <PENDING|ACTIVE>",
		Short: "Change a student's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := student.ParseStatus(args[1])
			if err != nil {
				return err
			}

			mgr, err := c.manager(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := c.requestContext(cmd)
			defer cancel()
			updated, err := mgr.SetStatus(ctx, args[0], st)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s is now %s\n", updated.StudentID, updated.Status)
			return nil
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := c.manager(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := c.requestContext(cmd)
			defer cancel()
			if err := mgr.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Student deleted")
			return nil
		},
	}
}
