package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/carmarket/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "John")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("name", "   ")
	if !v2.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
	if v2.Errors()[0].Rule != RuleInvalidType {
		t.Errorf("expected rule %s, got %s", RuleInvalidType, v2.Errors()[0].Rule)
	}
}

func TestValidatorMaxLength(t *testing.T) {
	v := New().MaxLength("title", "this is too long", 5).MaxLength("model", "Golf", 5)
	errs := v.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Rule != RuleTooBig || errs[0].Message != "String must contain at most 5 character(s)" {
		t.Errorf("unexpected error %+v", errs[0])
	}
}

func TestValidatorPattern(t *testing.T) {
	if New().Pattern("vin", "1HGCM82633A004352", `^[A-HJ-NPR-Z0-9]{17}$`).HasErrors() {
		t.Error("expected matching pattern to pass")
	}
	if !New().Pattern("vin", "short", `^[A-HJ-NPR-Z0-9]{17}$`).HasErrors() {
		t.Error("expected non-matching pattern to fail")
	}
	if New().Pattern("vin", "", `^[A-Z]+$`).HasErrors() {
		t.Error("expected no error for empty value with pattern")
	}
}

func TestValidatorOneOf(t *testing.T) {
	v := New().OneOf("fuel", "steam", []string{"petrol", "diesel"})
	if !v.HasErrors() {
		t.Fatal("expected error for invalid oneOf value")
	}
	if v.Errors()[0].Rule != RuleInvalidEnumValue {
		t.Errorf("expected %s, got %s", RuleInvalidEnumValue, v.Errors()[0].Rule)
	}
	if !strings.Contains(v.Errors()[0].Message, "'petrol' | 'diesel'") {
		t.Errorf("unexpected message %q", v.Errors()[0].Message)
	}
}

func TestValidatorCustom(t *testing.T) {
	v := New().Custom(false, "price", "Price must be a multiple of 100")
	if v.Errors()[0].Message != "Price must be a multiple of 100" || v.Errors()[0].Rule != RuleCustom {
		t.Errorf("unexpected error %+v", v.Errors()[0])
	}
}

func TestValidatorDottedField(t *testing.T) {
	v := New().Required("owner.email", "")
	fe := v.Errors()[0]
	if len(fe.Path) != 2 || fe.Path[0] != "owner" || fe.Path[1] != "email" {
		t.Errorf("expected split path, got %v", fe.Path)
	}
	if fe.Field() != "owner.email" {
		t.Errorf("expected dotted field, got %q", fe.Field())
	}
}

func TestValidatorErr(t *testing.T) {
	if New().Err() != nil {
		t.Error("expected nil error when nothing failed")
	}
	err := New().Required("name", "").Err()
	if err == nil || !strings.Contains(err.Error(), "name: Required") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestValidatorValidate(t *testing.T) {
	if New().Required("name", "John").Validate() != nil {
		t.Error("expected nil for valid input")
	}

	v := New()
	v.Pattern("email", "nope", `^[^@]+@[^@]+$`)
	v.MaxLength("title", "this is too long", 5)
	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	env := appErr.Envelope()
	if env.ErrorCode != "VALIDATION_FAILED" || env.StatusCode != 400 {
		t.Errorf("unexpected envelope %+v", env)
	}
	if len(env.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(env.Errors))
	}
	if env.Errors[0].Field != "email" || env.Errors[0].Code != "invalid_string" {
		t.Errorf("unexpected first error %+v", env.Errors[0])
	}
	if env.Errors[1].Field != "title" || env.Errors[1].Code != "too_big" {
		t.Errorf("unexpected second error %+v", env.Errors[1])
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	result := v.Required("name", "John").MaxLength("name", "John", 100).OneOf("fuel", "diesel", []string{"petrol", "diesel"})
	if result != v {
		t.Error("expected chaining to return same validator")
	}
	if v.HasErrors() {
		t.Error("expected no errors for valid chained validation")
	}
}

func TestErrorsIssues_IsIssueSource(t *testing.T) {
	var src errors.IssueSource = Errors{{Path: []string{"a", "b"}, Message: "m", Rule: RuleCustom}}
	issues := src.Issues()
	if len(issues) != 1 || issues[0].Code != RuleCustom || issues[0].Path[1] != "b" {
		t.Errorf("unexpected issues %+v", issues)
	}
}

type listingOwner struct {
	Email string `json:"email" validate:"required,email"`
}

type listingPhoto struct {
	URL string `json:"url" validate:"required,url"`
}

type createListing struct {
	Title    string         `json:"title" validate:"required,min=3,max=80"`
	Price    int            `json:"price" validate:"min=1"`
	Fuel     string         `json:"fuel" validate:"oneof=petrol diesel electric hybrid"`
	Owner    listingOwner   `json:"owner"`
	Photos   []listingPhoto `json:"photos" validate:"dive"`
	KmDriven int            `validate:"gte=0"`
}

func TestStructValidateValid(t *testing.T) {
	err := Validate(createListing{
		Title:  "Volvo V70",
		Price:  9500,
		Fuel:   "diesel",
		Owner:  listingOwner{Email: "jane@example.com"},
		Photos: []listingPhoto{{URL: "https://cdn.example.com/1.jpg"}},
	})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	err := Validate(createListing{
		Title:    "V7",
		Price:    0,
		Fuel:     "diesel",
		Owner:    listingOwner{Email: "not-an-email"},
		Photos:   []listingPhoto{{URL: "https://cdn.example.com/1.jpg"}, {URL: ""}},
		KmDriven: -1,
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	errs, ok := err.(Errors)
	if !ok {
		t.Fatalf("expected Errors, got %T", err)
	}

	want := []struct {
		field string
		rule  string
	}{
		{"title", RuleTooSmall},
		{"price", RuleTooSmall},
		{"owner.email", RuleInvalidString},
		{"photos.1.url", RuleInvalidType},
		{"km_driven", RuleTooSmall},
	}
	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %d: %v", len(want), len(errs), errs)
	}
	for i, w := range want {
		if errs[i].Field() != w.field || errs[i].Rule != w.rule {
			t.Errorf("errors[%d]: expected %s/%s, got %s/%s", i, w.field, w.rule, errs[i].Field(), errs[i].Rule)
		}
	}
}

func TestStructValidateMessages(t *testing.T) {
	type input struct {
		Code  string `json:"code" validate:"min=3"`
		Count int    `json:"count" validate:"max=10"`
	}
	errs := Validate(input{Code: "ab", Count: 11}).(Errors)
	if errs[0].Message != "String must contain at least 3 character(s)" {
		t.Errorf("unexpected string message %q", errs[0].Message)
	}
	if errs[1].Message != "Number must be less than or equal to 10" {
		t.Errorf("unexpected number message %q", errs[1].Message)
	}
}

func TestNamespacePath(t *testing.T) {
	tests := []struct {
		ns   string
		want string
	}{
		{"Listing.title", "title"},
		{"Listing.owner.email", "owner.email"},
		{"Listing.photos[0].url", "photos.0.url"},
		{"Listing.tags[front]", "tags.front"},
		{"Listing.grid[1][2]", "grid.1.2"},
	}
	for _, tc := range tests {
		if got := strings.Join(namespacePath(tc.ns), "."); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.ns, tc.want, got)
		}
	}
}
