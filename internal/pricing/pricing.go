package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PendingLabel is shown instead of an amount while the price is undetermined.
const PendingLabel = "قیمت در انتظار تعیین"

// CurrencySuffix follows every formatted amount.
const CurrencySuffix = " تومان"

// decimalSeparator is the Persian momayyez used between whole and fractional digits.
const decimalSeparator = "٫"

// Scale is the number of fractional digits a stored amount may carry.
const Scale = 2

// MaxAmount is the largest amount a NUMERIC(14,2) column holds.
var MaxAmount = decimal.New(1, 12).Sub(decimal.New(1, -Scale))

var (
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrAmountScale    = errors.New("amount must have at most two decimal places")
	ErrAmountRange    = errors.New("amount exceeds the maximum storable value")
)

var printer = message.NewPrinter(language.Persian)

var persianDigits = strings.NewReplacer(
	"0", "۰", "1", "۱", "2", "۲", "3", "۳", "4", "۴",
	"5", "۵", "6", "۶", "7", "۷", "8", "۸", "9", "۹",
)

// CheckAmount reports whether amount can be stored without rounding or overflow.
func CheckAmount(amount decimal.Decimal) error {
	switch {
	case amount.IsNegative():
		return ErrNegativeAmount
	case !amount.Equal(amount.Truncate(Scale)):
		return ErrAmountScale
	case amount.GreaterThan(MaxAmount):
		return ErrAmountRange
	}
	return nil
}

// FormatPrice renders an order total for customers. Totals at or below zero are pending.
// Fractional digits are kept as given.
func FormatPrice(total decimal.Decimal) string {
	if !total.IsPositive() {
		return PendingLabel
	}
	whole := total.Truncate(0)
	out := printer.Sprintf("%d", whole.IntPart())
	if frac := total.Sub(whole); !frac.IsZero() {
		// "0.45" -> "45"; String drops trailing zeros.
		digits := strings.TrimPrefix(frac.String(), "0.")
		out += decimalSeparator + persianDigits.Replace(digits)
	}
	return out + CurrencySuffix
}
