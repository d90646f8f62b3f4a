package checkout

import (
	"strings"
	"time"
	"unicode"
)

// Address holds the delivery contact fields. All fields are required.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// CardDetails holds the payment form fields. Never persisted.
type CardDetails struct {
	CardholderName string `json:"cardholder_name"`
	CardNumber     string `json:"card_number"`
	Expiry         string `json:"expiry"`
	CVC            string `json:"cvc"`
}

// FieldErrors maps a field name to its error message.
type FieldErrors map[string]string

// addressFields lists every address field, in form order.
var addressFields = []string{
	"first_name", "last_name", "email", "phone",
	"line1", "city", "state", "zip", "country",
}

// cardFields lists every payment field, in form order.
var cardFields = []string{"cardholder_name", "card_number", "expiry", "cvc"}

// digitsOnly strips every non-digit character.
func digitsOnly(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// required reports whether a trimmed value is non-empty.
func required(v string) bool {
	return strings.TrimSpace(v) != ""
}

// validEmail checks for a local@domain.tld shape: no whitespace, exactly
// one @, and at least one dot in the domain.
func validEmail(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" || strings.ContainsFunc(v, unicode.IsSpace) {
		return false
	}
	at := strings.Index(v, "@")
	if at <= 0 || at != strings.LastIndex(v, "@") {
		return false
	}
	domain := v[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// validPhone accepts any punctuation as long as the digit count is 10-15.
func validPhone(v string) bool {
	n := len(digitsOnly(v))
	return n >= 10 && n <= 15
}

// LuhnValid strips non-digits, requires at least 12 digits and checks the
// Luhn checksum: doubling every second digit from the right, folding
// values above 9, the digit sum must be divisible by 10.
func LuhnValid(cardNumber string) bool {
	s := digitsOnly(cardNumber)
	if len(s) < 12 {
		return false
	}
	sum := 0
	double := false
	for i := len(s) - 1; i >= 0; i-- {
		n := int(s[i] - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return sum%10 == 0
}

// NormalizeExpiry reshapes raw expiry input: non-digit, non-slash
// characters are dropped, the value is capped at 5 characters and a slash
// is inserted after two digits when missing.
func NormalizeExpiry(v string) string {
	var b strings.Builder
	for _, r := range v {
		if (r >= '0' && r <= '9') || r == '/' {
			b.WriteRune(r)
		}
		if b.Len() >= 5 {
			break
		}
	}
	cleaned := b.String()
	if strings.Contains(cleaned, "/") || digitsOnly(cleaned) != cleaned {
		return cleaned
	}
	switch len(cleaned) {
	case 2:
		return cleaned + "/"
	case 3, 4:
		return cleaned[:2] + "/" + cleaned[2:]
	}
	return cleaned
}

// ExpiryValidAt checks an exact MM/YY expiry against the given instant.
// Two-digit years are compared directly, which pins every expiry to the
// current century window.
func ExpiryValidAt(v string, now time.Time) bool {
	if len(v) != 5 || v[2] != '/' {
		return false
	}
	mmRaw, yyRaw := v[:2], v[3:]
	if digitsOnly(mmRaw) != mmRaw || digitsOnly(yyRaw) != yyRaw {
		return false
	}
	mm := int(mmRaw[0]-'0')*10 + int(mmRaw[1]-'0')
	yy := int(yyRaw[0]-'0')*10 + int(yyRaw[1]-'0')
	if mm < 1 || mm > 12 {
		return false
	}
	curYY := now.Year() % 100
	curMM := int(now.Month())
	if yy < curYY {
		return false
	}
	if yy == curYY && mm < curMM {
		return false
	}
	return true
}

// validCVC accepts input carrying exactly 3 or 4 digits.
func validCVC(v string) bool {
	n := len(digitsOnly(v))
	return n == 3 || n == 4
}

// ValidateAddress runs every address field check and returns the failures.
func ValidateAddress(a Address) FieldErrors {
	e := FieldErrors{}
	if !required(a.FirstName) {
		e["first_name"] = "First name is required."
	}
	if !required(a.LastName) {
		e["last_name"] = "Last name is required."
	}
	if !required(a.Email) {
		e["email"] = "Email is required."
	} else if !validEmail(a.Email) {
		e["email"] = "Enter a valid email address."
	}
	if !required(a.Phone) {
		e["phone"] = "Phone number is required."
	} else if !validPhone(a.Phone) {
		e["phone"] = "Enter a valid phone number (10-15 digits)."
	}
	if !required(a.Line1) {
		e["line1"] = "Street address is required."
	}
	if !required(a.City) {
		e["city"] = "City is required."
	}
	if !required(a.State) {
		e["state"] = "State/Province is required."
	}
	if !required(a.Zip) {
		e["zip"] = "ZIP/Postal code is required."
	}
	if !required(a.Country) {
		e["country"] = "Country is required."
	}
	return e
}

// ValidateCard runs every payment field check against the given instant
// and returns the failures.
func ValidateCard(p CardDetails, now time.Time) FieldErrors {
	e := FieldErrors{}
	if !required(p.CardholderName) {
		e["cardholder_name"] = "Name on card is required."
	}
	if !required(p.CardNumber) {
		e["card_number"] = "Card number is required."
	} else if !LuhnValid(p.CardNumber) {
		e["card_number"] = "Enter a valid card number."
	}
	if !required(p.Expiry) {
		e["expiry"] = "Expiry is required."
	} else if !ExpiryValidAt(p.Expiry, now) {
		e["expiry"] = "Enter a valid expiry (MM/YY)."
	}
	if !required(p.CVC) {
		e["cvc"] = "CVC is required."
	} else if !validCVC(p.CVC) {
		e["cvc"] = "Enter a valid CVC (3-4 digits)."
	}
	return e
}

// MaskCardNumber keeps only the last 4 digits for display.
func MaskCardNumber(cardNumber string) string {
	d := digitsOnly(cardNumber)
	if len(d) < 4 {
		return "**** **** **** ****"
	}
	return "**** **** **** " + d[len(d)-4:]
}
