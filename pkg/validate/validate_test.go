package validate_test

import (
	"testing"

	"github.com/jcorner/storefront/pkg/validate"
)

type productInput struct {
	Name     string  `json:"name"            validate:"required,max=120"`
	Price    float64 `json:"price"           validate:"gte=0"`
	Category string  `json:"productCategory" validate:"required,in=Pokemon,CookieRun,Yugioh"`
}

type profileInput struct {
	Email    *string `json:"email"    validate:"nullable,contains=@"`
	MobileNo *string `json:"mobileNo" validate:"nullable,size=11"`
}

func strPtr(s string) *string { return &s }

func TestValidInput(t *testing.T) {
	errs := validate.Struct(productInput{Name: "Pikachu", Price: 10, Category: "Pokemon"})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(productInput{})
	if _, ok := errs["name"]; !ok {
		t.Error("expected name to be required")
	}
	if _, ok := errs["productCategory"]; !ok {
		t.Error("expected productCategory to be required")
	}
	if _, ok := errs["price"]; ok {
		t.Error("zero price must be allowed")
	}
}

func TestInRuleKeepsFollowingRules(t *testing.T) {
	type in struct {
		Status string `json:"status" validate:"required,in=Pending,Paid,Completed,max=4"`
	}
	errs := validate.Struct(in{Status: "Paid"})
	if validate.HasErrors(errs) {
		t.Errorf("expected Paid to pass, got %v", errs)
	}
	errs = validate.Struct(in{Status: "Pending"})
	if _, ok := errs["status"]; !ok {
		t.Error("expected max=4 to apply after in=")
	}
	errs = validate.Struct(in{Status: "Shipped"})
	if errs["status"] != "The selected status is invalid." {
		t.Errorf("unexpected message %q", errs["status"])
	}
}

func TestNegativePriceFails(t *testing.T) {
	errs := validate.Struct(productInput{Name: "x", Price: -1, Category: "Yugioh"})
	if _, ok := errs["price"]; !ok {
		t.Error("expected gte=0 to reject -1")
	}
}

func TestPointerFieldsAreOptional(t *testing.T) {
	if errs := validate.Struct(profileInput{}); validate.HasErrors(errs) {
		t.Errorf("nil pointers must be skipped, got %v", errs)
	}

	errs := validate.Struct(profileInput{Email: strPtr("nope"), MobileNo: strPtr("123")})
	if _, ok := errs["email"]; !ok {
		t.Error("expected email error")
	}
	if _, ok := errs["mobileNo"]; !ok {
		t.Error("expected mobileNo error")
	}

	errs = validate.Struct(profileInput{Email: strPtr("a@b.co"), MobileNo: strPtr("09171234567")})
	if validate.HasErrors(errs) {
		t.Errorf("expected valid pointers to pass, got %v", errs)
	}
}

func TestContainsAndSizeMessages(t *testing.T) {
	errs := validate.Struct(profileInput{Email: strPtr("nope"), MobileNo: strPtr("")})
	if got := errs["email"]; got != `The email must contain "@".` {
		t.Errorf("unexpected email message %q", got)
	}
	if got := errs["mobileNo"]; got != "The mobileNo must be exactly 11 characters." {
		t.Errorf("unexpected mobileNo message %q", got)
	}
}

func TestFirstIsDeterministic(t *testing.T) {
	errs := map[string]string{"b": "second", "a": "first"}
	if got := validate.First(errs); got != "first" {
		t.Errorf("expected first, got %q", got)
	}
	if got := validate.First(nil); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
