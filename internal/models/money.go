package models

import (
	"fmt"
	"math"
)

// Cents is a monetary amount in minor units
type Cents int64

// CentsFromFloat converts a decimal amount such as 10.5 into Cents, rounding half away from zero
func CentsFromFloat(amount float64) Cents {
	return Cents(math.Round(amount * 100))
}

// Times multiplies the amount by a quantity
func (c Cents) Times(quantity int) Cents {
	return c * Cents(quantity)
}

// Float returns the amount as a decimal number of currency units
func (c Cents) Float() float64 {
	return float64(c) / 100
}

// String renders the amount with two decimals and no currency sign
func (c Cents) String() string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, int64(c)/100, int64(c)%100)
}

// Dollars renders the amount prefixed with a dollar sign
func (c Cents) Dollars() string {
	return "$" + c.String()
}
