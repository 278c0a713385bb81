// Package format renders won amounts the way Korean tax notices print them.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Number returns an integer with ko-KR thousands separators (e.g., "-1,234,567").
func Number(amount int64) string {
	p := message.NewPrinter(language.Korean)
	return p.Sprintf("%d", amount)
}

// Won returns an amount followed by the won unit (e.g., "102,880원").
func Won(amount int64) string {
	return Number(amount) + "원"
}

// Currency returns an amount with the won sign prefix (e.g., "₩102,880").
func Currency(amount int64) string {
	if amount < 0 {
		return "-₩" + Number(-amount)
	}
	return "₩" + Number(amount)
}

// Percent returns a whole percentage (e.g., "44%").
func Percent(percent int64) string {
	return Number(percent) + "%"
}
