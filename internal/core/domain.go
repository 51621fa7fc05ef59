package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	USD Currency = "USD"
	INR Currency = "INR"

	DefaultCurrency = INR
)

const (
	ModeLocal Mode = "local"
	ModeCloud Mode = "cloud"
)

const (
	CollectionSettings   Collection = "settings"
	CollectionViews      Collection = "views"
	CollectionCategories Collection = "categories"
	CollectionExpenses   Collection = "expenses"
)

// AnonymousOwner is the owner label used for local mode, which has no owner id.
const AnonymousOwner = "anon"

const isoDate = "2006-01-02"

type (
	Currency   string
	Mode       string
	Collection string

	// Date is a calendar day. The time component is always midnight UTC.
	Date struct {
		time.Time
	}

	Settings struct {
		Currency Currency `json:"currency"`
	}

	SettingsPatch struct {
		Currency *Currency `json:"currency,omitempty"`
	}

	// View is a named spending profile such as "Home" or "Personal".
	View struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// Category is a subcategory of spending inside exactly one view.
	Category struct {
		ID     string `json:"id"`
		ViewID string `json:"viewId"`
		Name   string `json:"name"`
	}

	Expense struct {
		ID         string          `json:"id"`
		ViewID     string          `json:"viewId"`
		CategoryID string          `json:"categoryId"`
		Amount     decimal.Decimal `json:"amount"`
		Date       Date            `json:"date"`
		Note       string          `json:"note,omitempty"`
	}

	// ExpensePatch carries the fields of an edit. Nil fields are left unchanged;
	// an empty Note clears the note.
	ExpensePatch struct {
		ViewID     *string          `json:"viewId,omitempty"`
		CategoryID *string          `json:"categoryId,omitempty"`
		Amount     *decimal.Decimal `json:"amount,omitempty"`
		Date       *Date            `json:"date,omitempty"`
		Note       *string          `json:"note,omitempty"`
	}

	// Scope identifies which store and which owner a repository call addresses.
	Scope struct {
		Mode    Mode
		OwnerID string
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrStorageWrite     = errors.New("storage write failed")
	ErrCloudUnavailable = errors.New("cloud backend not configured")
	ErrNoSession        = errors.New("no authenticated session")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrInvalidMode      = errors.New("invalid storage mode")
	ErrEmptyName        = errors.New("empty name")
	ErrMissingReference = errors.New("missing view or category reference")
)

// AllCollections lists every collection in a stable order.
func AllCollections() []Collection {
	return []Collection{CollectionSettings, CollectionViews, CollectionCategories, CollectionExpenses}
}

func (c Currency) Valid() bool {
	return c == USD || c == INR
}

// Symbol returns the display symbol. It is a label only; amounts are never converted.
func (c Currency) Symbol() string {
	if c == USD {
		return "$"
	}
	return "₹"
}

// Currencies returns the selectable currencies.
func Currencies() []Currency {
	return []Currency{USD, INR}
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
	return c, nil
}

func (m Mode) Valid() bool {
	return m == ModeLocal || m == ModeCloud
}

func (m Mode) String() string {
	return string(m)
}

// DefaultSettings is what an owner without stored settings sees.
func DefaultSettings() Settings {
	return Settings{Currency: DefaultCurrency}
}

// Apply returns s with the non-nil fields of p applied.
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	return s
}

func (s Settings) Validate() error {
	if !s.Currency.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, s.Currency)
	}
	return nil
}

// LocalScope is the scope used when nobody is signed in.
func LocalScope() Scope {
	return Scope{Mode: ModeLocal}
}

// CloudScope returns the scope of an authenticated owner.
func CloudScope(ownerID string) Scope {
	return Scope{Mode: ModeCloud, OwnerID: ownerID}
}

// Owner returns the owner id, or AnonymousOwner in local mode.
func (s Scope) Owner() string {
	if s.Mode != ModeCloud || s.OwnerID == "" {
		return AnonymousOwner
	}
	return s.OwnerID
}

func (s Scope) String() string {
	return string(s.Mode) + ":" + s.Owner()
}

// NewDate creates a Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts YYYY-MM-DD. Longer ISO timestamps are cut to their date part.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(isoDate) {
		s = s[:len(isoDate)]
	}
	t, err := time.Parse(isoDate, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(isoDate)
}

// EndOfDay returns the last instant of the day.
func (d Date) EndOfDay() time.Time {
	return d.Time.Add(24*time.Hour - time.Nanosecond)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (v View) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.ViewID == "" {
		return ErrMissingReference
	}
	return nil
}

// Validate checks the shape of user input. Stores do not call it.
func (e Expense) Validate() error {
	if e.ViewID == "" || e.CategoryID == "" {
		return ErrMissingReference
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Apply returns e with the non-nil fields of p applied. The id never changes.
func (e Expense) Apply(p ExpensePatch) Expense {
	if p.ViewID != nil {
		e.ViewID = *p.ViewID
	}
	if p.CategoryID != nil {
		e.CategoryID = *p.CategoryID
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Note != nil {
		e.Note = *p.Note
	}
	return e
}

// IsEmpty reports whether the patch changes nothing.
func (p ExpensePatch) IsEmpty() bool {
	return p.ViewID == nil && p.CategoryID == nil && p.Amount == nil && p.Date == nil && p.Note == nil
}
