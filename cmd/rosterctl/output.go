package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"records-service/internal/student"
)

func printStudents(w io.Writer, list []student.Student) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No students found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STUDENT ID\tNAME\tCOURSE\tYEAR\tSTATUS\tID")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.StudentID, fullName(s), s.Course, s.YearLevel, s.EffectiveStatus(), s.ID)
	}
	tw.Flush()
}

// fullName renders "Last, First Middle".
func fullName(s student.Student) string {
	given := strings.TrimSpace(s.FirstName + " " + s.MiddleName)
	if given == "" {
		return s.LastName
	}
	return s.LastName + ", " + given
}
