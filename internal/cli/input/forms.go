package input

import (
	"strings"

	"github.com/yndnr/cricket-go/internal/core/domain"
	"github.com/yndnr/cricket-go/internal/core/service"
)

// MatchForm is the create-match form. Date accepts the layouts of
// domain.ParseMatchDate in local time.
type MatchForm struct {
	Format   string `json:"format" validate:"required"`
	Date     string `json:"date" validate:"required,matchdate"`
	Location string `json:"location" validate:"required"`
}

// Request validates the form and converts it to a CreateMatchRequest with
// an ISO 8601 date.
func (f MatchForm) Request() (service.CreateMatchRequest, error) {
	f.Format = strings.TrimSpace(f.Format)
	f.Location = strings.TrimSpace(f.Location)
	f.Date = strings.TrimSpace(f.Date)
	if err := Validate(f); err != nil {
		return service.CreateMatchRequest{}, err
	}
	when, err := domain.ParseMatchDate(f.Date)
	if err != nil {
		return service.CreateMatchRequest{}, domain.NewValidationError("date", err.Error())
	}
	return service.CreateMatchRequest{
		Format:   f.Format,
		Date:     domain.FormatMatchDate(when),
		Location: f.Location,
	}, nil
}

// IDForm carries a single resource id.
type IDForm struct {
	ID string `json:"id" validate:"required"`
}
