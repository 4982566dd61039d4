package validation

import (
	"regexp"
	"strings"
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigitRe = regexp.MustCompile(`\D`)
)

// Digits strips everything that is not 0-9.
func Digits(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

// IsValidCPF checks the two mod-11 verification digits of a Brazilian CPF.
// All-repeated sequences such as 111.111.111-11 pass the checksum but are
// reserved and therefore rejected.
func IsValidCPF(cpf string) bool {
	digits := Digits(cpf)
	if len(digits) != 11 {
		return false
	}
	if allSame(digits) {
		return false
	}

	if checkDigit(digits, 9, 10) != int(digits[9]-'0') {
		return false
	}
	if checkDigit(digits, 10, 11) != int(digits[10]-'0') {
		return false
	}
	return true
}

// checkDigit computes the verification digit over the first n digits with
// weights starting at startWeight and descending. A remainder of 10 maps to 0.
func checkDigit(digits string, n, startWeight int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (startWeight - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		rest = 0
	}
	return rest
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// SanitizeCEP reduces a postal code to at most 8 digits.
func SanitizeCEP(cep string) string {
	d := Digits(cep)
	if len(d) > 8 {
		d = d[:8]
	}
	return d
}

// IsValidCEP reports whether the value holds exactly 8 digits once stripped.
func IsValidCEP(cep string) bool {
	return len(Digits(cep)) == 8
}

// IsValidEmail checks the local@domain.tld shape. Deliverability is the
// messaging channel's problem, not ours.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// HasPhoneDigits reports whether at least one digit is present.
func HasPhoneDigits(phone string) bool {
	return len(Digits(phone)) > 0
}

// FormatCPF renders digits as 000.000.000-00, tolerating partial input.
func FormatCPF(v string) string {
	d := Digits(v)
	if len(d) > 11 {
		d = d[:11]
	}
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + "." + d[3:]
	case len(d) <= 9:
		return d[:3] + "." + d[3:6] + "." + d[6:]
	default:
		return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
	}
}

// FormatCEP renders digits as 00000-000.
func FormatCEP(v string) string {
	d := SanitizeCEP(v)
	if len(d) <= 5 {
		return d
	}
	return d[:5] + "-" + d[5:]
}

// FormatPhone renders a Brazilian phone as (00) 0000-0000 or (00) 00000-0000
// depending on whether the subscriber number carries the mobile ninth digit.
func FormatPhone(v string) string {
	d := Digits(v)
	if len(d) > 11 {
		d = d[:11]
	}
	switch {
	case len(d) <= 2:
		return d
	case len(d) <= 6:
		return "(" + d[:2] + ") " + d[2:]
	case len(d) <= 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	default:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
}

// TrimmedEmpty reports whether the value is empty after trimming whitespace.
func TrimmedEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}
