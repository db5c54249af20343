package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/atelierworks/timberline/internal/domain"
)

// newLinkForm builds the dependency dialog. The bound values are edited
// in place; the caller reads them back once the form completes.
func newLinkForm(depType *domain.DependencyType, lag *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[domain.DependencyType]().
				Title("Relationship").
				Options(
					huh.NewOption("Finish to Start (FS)", domain.FinishToStart),
					huh.NewOption("Start to Start (SS)", domain.StartToStart),
					huh.NewOption("Finish to Finish (FF)", domain.FinishToFinish),
					huh.NewOption("Start to Finish (SF)", domain.StartToFinish),
				).
				Value(depType),
			huh.NewInput().
				Title("Lag (days)").
				Placeholder("0").
				Validate(validateLag).
				Value(lag),
		),
	).WithTheme(timberlineHuhTheme()).WithShowHelp(false)
}

func validateLag(s string) error {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("lag must be a whole number of days")
	}
	if n < -365 || n > 365 {
		return fmt.Errorf("lag must be between -365 and 365 days")
	}
	return nil
}
