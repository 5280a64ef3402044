package checkout

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// PickupAddress stands in for the address when the customer sends only a
// name and a phone.
const PickupAddress = "Recoge en Monasterio"

var (
	digitsOnly = regexp.MustCompile(`^\d+$`)
	nonDigit   = regexp.MustCompile(`\D`)
	phoneRun   = regexp.MustCompile(`\d{7,15}`)
)

// ValidateCustomer parses "name\naddress\nphone" (or "name\nphone"). Parsed
// fields are returned even when the data is invalid.
func ValidateCustomer(text string) Customer {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return Customer{}
	}

	c := Customer{Name: lines[0], Address: PickupAddress, Phone: lines[1]}
	if len(lines) >= 3 {
		c.Address, c.Phone = lines[1], lines[2]
	}

	if utf8.RuneCountInString(c.Name) < 3 || digitsOnly.MatchString(c.Name) {
		return c
	}
	// any run of 7 to 15 digits passes, longer numbers included
	if !phoneRun.MatchString(nonDigit.ReplaceAllString(c.Phone, "")) {
		return c
	}

	c.Valid = true
	return c
}
