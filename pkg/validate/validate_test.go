package validate_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shashiranjanraj/rigparts/pkg/validate"
)

type contact struct {
	Name     string `json:"name"     validate:"required,max=120"`
	Email    string `json:"email"    validate:"required,email"`
	Phone    string `json:"phone"    validate:"required,min=7"`
	Method   string `json:"method"   validate:"required,in=pickup|delivery|shipping"`
	Quantity int    `json:"quantity" validate:"gte=1,lte=999"`
	Company  string `json:"company"  validate:"nullable,max=5"`
}

func valid() contact {
	return contact{Name: "Dana", Email: "dana@haulers.ca", Phone: "905-555-0101", Method: "pickup", Quantity: 2}
}

func TestValidStructPasses(t *testing.T) {
	if errs := validate.Struct(valid()); validate.HasErrors(errs) {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestRequiredAndEmail(t *testing.T) {
	in := valid()
	in.Name = "   "
	in.Email = "not-an-email"

	errs := validate.Struct(in)
	if !strings.Contains(errs["name"], "required") {
		t.Errorf("name: got %q", errs["name"])
	}
	if !strings.Contains(errs["email"], "valid email") {
		t.Errorf("email: got %q", errs["email"])
	}
}

func TestInRule(t *testing.T) {
	in := valid()
	in.Method = "courier"
	if errs := validate.Struct(in); errs["method"] == "" {
		t.Error("expected unknown delivery method to fail")
	}
}

func TestNumericBounds(t *testing.T) {
	in := valid()
	in.Quantity = 0
	if errs := validate.Struct(in); errs["quantity"] == "" {
		t.Error("expected quantity 0 to fail")
	}
	in.Quantity = 1000
	if errs := validate.Struct(in); errs["quantity"] == "" {
		t.Error("expected quantity 1000 to fail")
	}
}

func TestNullableSkipsEmpty(t *testing.T) {
	in := valid()
	if errs := validate.Struct(in); errs["company"] != "" {
		t.Errorf("empty nullable field should pass, got %q", errs["company"])
	}
	in.Company = "Big Rig Logistics"
	if errs := validate.Struct(in); errs["company"] == "" {
		t.Error("expected long company to fail max=5")
	}
}

func TestVIN(t *testing.T) {
	cases := map[string]bool{
		"1XKWDB0X57J211825": true,
		"1xkwdb0x57j211825": true,
		"1XKWDB0X57J21182":  false,
		"1XKWDB0X57J2118I5": false,
		"":                  false,
	}
	for vin, want := range cases {
		if got := validate.VIN(vin); got != want {
			t.Errorf("VIN(%q) = %v, want %v", vin, got, want)
		}
	}
}

func TestCheckReturnsTypedError(t *testing.T) {
	in := valid()
	in.Phone = ""

	err := validate.Check(in)
	var verr *validate.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validate.Error, got %T", err)
	}
	if verr.Fields["phone"] == "" {
		t.Errorf("expected phone failure, got %v", verr.Fields)
	}
	if validate.Check(valid()) != nil {
		t.Error("expected nil error for valid input")
	}
}

func TestErrorAddKeepsFirstMessage(t *testing.T) {
	e := &validate.Error{}
	e.Add("address", "first")
	e.Add("address", "second")
	if e.Fields["address"] != "first" {
		t.Errorf("got %q", e.Fields["address"])
	}
	if !strings.Contains(e.Error(), "address: first") {
		t.Errorf("unexpected message %q", e.Error())
	}
}
