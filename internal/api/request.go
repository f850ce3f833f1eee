package api

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"StockTrends/internal/model"
	"StockTrends/internal/palette"
	"StockTrends/internal/symbol"
)

// ValidationError rejects a whole batch with 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type historyQuery struct {
	Symbols   string `validate:"required"`
	StartDate string `validate:"required"`
	Theme     string `validate:"omitempty,oneof=light dark"`
}

// batch is a validated request.
type batch struct {
	Refs      []model.SymbolRef
	StartDate string
	Theme     palette.Theme
}

func parseBatch(v *validator.Validate, r *http.Request, now time.Time) (*batch, error) {
	q := historyQuery{
		Symbols:   r.URL.Query().Get("symbols"),
		StartDate: r.URL.Query().Get("startDate"),
		Theme:     r.URL.Query().Get("theme"),
	}
	if err := v.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Field() == "Theme" {
			return nil, &ValidationError{Msg: "theme must be light or dark"}
		}
		return nil, &ValidationError{Msg: "Missing symbols or startDate parameter"}
	}

	if !datePattern.MatchString(q.StartDate) {
		return nil, &ValidationError{Msg: "startDate must be in yyyy-mm-dd format"}
	}
	start, err := model.ParseDate(q.StartDate)
	if err != nil {
		return nil, &ValidationError{Msg: "Invalid startDate"}
	}
	y, m, d := now.UTC().AddDate(-1, 0, 0).Date()
	if start.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
		return nil, &ValidationError{Msg: "startDate must be within the past 1 year"}
	}

	refs, err := symbol.Normalize(q.Symbols)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	return &batch{Refs: refs, StartDate: q.StartDate, Theme: palette.Theme(q.Theme)}, nil
}
