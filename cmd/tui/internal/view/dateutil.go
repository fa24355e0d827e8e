package view

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// parseDay reads a YYYY-MM-DD date as local midnight.
func parseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, errors.New("use YYYY-MM-DD")
	}

	return t, nil
}

func validateDay(s string) error {
	_, err := parseDay(s)
	return err
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}

	if !d.IsPositive() {
		return decimal.Zero, errors.New("must be greater than zero")
	}

	return d, nil
}

func validateAmount(s string) error {
	_, err := parseAmount(s)
	return err
}
