package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"expensetracker/internal/core"
	"expensetracker/internal/report"
)

const maxBodyBytes = 1 << 20

var errEmptyPatch = errors.New("patch changes nothing")

type sessionRequest struct {
	Token string `json:"token" validate:"required"`
}

type settingsRequest struct {
	Currency *string `json:"currency" validate:"omitnil,currency"`
}

type viewRequest struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

type categoryRequest struct {
	ViewID string `json:"viewId" validate:"required"`
	Name   string `json:"name" validate:"notblank,max=100"`
}

type expenseRequest struct {
	ViewID     string `json:"viewId" validate:"required"`
	CategoryID string `json:"categoryId" validate:"required"`
	Amount     string `json:"amount" validate:"amount"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Note       string `json:"note" validate:"max=500"`
}

type expensePatchRequest struct {
	ViewID     *string `json:"viewId" validate:"omitnil,notblank"`
	CategoryID *string `json:"categoryId" validate:"omitnil,notblank"`
	Amount     *string `json:"amount" validate:"omitnil,amount"`
	Date       *string `json:"date" validate:"omitnil,datetime=2006-01-02"`
	Note       *string `json:"note" validate:"omitnil,max=500"`
}

type listQuery struct {
	Page     int `json:"page" validate:"gte=0"`
	PageSize int `json:"page_size" validate:"omitempty,pagesize"`
}

// newValidator registers the domain tags used by the request structs.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		_, err := core.ParseAmount(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("pagesize", func(fl validator.FieldLevel) bool {
		return slices.Contains(report.PageSizes(), int(fl.Field().Int()))
	})
	v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		_, err := core.ParseCurrency(fl.Field().String())
		return err == nil
	})
	return v
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest(fmt.Errorf("decode body: %w", err))
	}
	if err := s.validate.Struct(dst); err != nil {
		return badRequest(err)
	}
	return nil
}

func (req expenseRequest) toExpense() (core.Expense, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		ViewID:     strings.TrimSpace(req.ViewID),
		CategoryID: strings.TrimSpace(req.CategoryID),
		Amount:     amount,
		Date:       date,
		Note:       strings.TrimSpace(req.Note),
	}, nil
}

func (req expensePatchRequest) toPatch() (core.ExpensePatch, error) {
	var p core.ExpensePatch
	p.ViewID = req.ViewID
	p.CategoryID = req.CategoryID
	if req.Amount != nil {
		amount, err := core.ParseAmount(*req.Amount)
		if err != nil {
			return p, err
		}
		p.Amount = &amount
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			return p, err
		}
		p.Date = &date
	}
	if req.Note != nil {
		note := strings.TrimSpace(*req.Note)
		p.Note = &note
	}
	if p.IsEmpty() {
		return p, errEmptyPatch
	}
	return p, nil
}

// parseRange reads from/to or a named period. With neither the range is open.
func parseRange(q url.Values, now time.Time) (report.DateRange, report.Period, error) {
	from, to := strings.TrimSpace(q.Get("from")), strings.TrimSpace(q.Get("to"))
	if from != "" || to != "" {
		var rng report.DateRange
		if from != "" {
			d, err := core.ParseDate(from)
			if err != nil {
				return rng, "", err
			}
			rng.From = &d
		}
		if to != "" {
			d, err := core.ParseDate(to)
			if err != nil {
				return rng, "", err
			}
			rng.To = &d
		}
		return rng, report.PeriodCustom, nil
	}

	raw := strings.TrimSpace(q.Get("period"))
	if raw == "" {
		return report.DateRange{}, "", nil
	}
	p, err := report.ParsePeriod(raw)
	if err != nil {
		return report.DateRange{}, "", badRequest(err)
	}
	return report.RangeForPeriod(p, now), p, nil
}

func (s *Server) parseListQuery(q url.Values) (listQuery, error) {
	var lq listQuery
	var err error
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		if lq.Page, err = strconv.Atoi(v); err != nil {
			return lq, badRequest(fmt.Errorf("page: %w", err))
		}
	}
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		if lq.PageSize, err = strconv.Atoi(v); err != nil {
			return lq, badRequest(fmt.Errorf("page_size: %w", err))
		}
	}
	if err := s.validate.Struct(lq); err != nil {
		return lq, badRequest(err)
	}
	if lq.PageSize == 0 {
		lq.PageSize = report.DefaultPageSize
	}
	return lq, nil
}

// splitList parses a comma separated query value.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
