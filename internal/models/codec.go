package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coffeehaus/storefront/internal/errors"
	"github.com/shopspring/decimal"
)

// Cart lines are stored and transmitted as compact delimited strings, e.g.
// "42:latte:3.50:2:7.00". The same encoding backs both the Redis hash
// values and stateless UI actions that carry a full line snapshot, so a
// handler can reconstruct the line without a catalog lookup.
const (
	DefaultLineTemplate  = "id:name:price:quantity:cost"
	DefaultLineSeparator = ":"
)

// EncodeLine renders the line's fields in template order, joined by sep.
// Price and cost render with exactly two decimal places; this form must be
// stable because independent producers and consumers share the same store.
func EncodeLine(line CartLine, template, sep string) (string, error) {
	fields := strings.Split(template, sep)
	values := make([]string, 0, len(fields))

	for _, field := range fields {
		switch field {
		case "id":
			values = append(values, strconv.FormatInt(line.ProductID, 10))
		case "name":
			values = append(values, line.Name)
		case "price":
			values = append(values, line.UnitPrice.StringFixed(2))
		case "quantity":
			values = append(values, strconv.Itoa(line.Quantity))
		case "cost":
			values = append(values, line.Cost.StringFixed(2))
		default:
			return "", errors.MalformedLineError(fmt.Sprintf("Unknown template field: %s", field))
		}
	}

	return strings.Join(values, sep), nil
}

// DecodeLine parses a delimited line back into a CartLine. A field count
// that does not match the template, an unparseable number, or a negative
// price/quantity/cost all fail with a MalformedLine error.
func DecodeLine(encoded, template, sep string) (CartLine, error) {
	fields := strings.Split(template, sep)
	values := strings.Split(encoded, sep)

	if len(fields) != len(values) {
		return CartLine{}, errors.MalformedLineError(
			fmt.Sprintf("Expected %d fields, got %d", len(fields), len(values))).
			WithDetail(encoded)
	}

	var line CartLine

	for i, field := range fields {
		value := values[i]

		switch field {
		case "id":
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return CartLine{}, malformedField(field, value, err)
			}

			line.ProductID = id
		case "name":
			line.Name = value
		case "price":
			price, err := decimal.NewFromString(value)
			if err != nil || price.IsNegative() {
				return CartLine{}, malformedField(field, value, err)
			}

			line.UnitPrice = price
		case "quantity":
			quantity, err := strconv.Atoi(value)
			if err != nil || quantity < 0 {
				return CartLine{}, malformedField(field, value, err)
			}

			line.Quantity = quantity
		case "cost":
			cost, err := decimal.NewFromString(value)
			if err != nil || cost.IsNegative() {
				return CartLine{}, malformedField(field, value, err)
			}

			line.Cost = cost
		default:
			return CartLine{}, errors.MalformedLineError(fmt.Sprintf("Unknown template field: %s", field))
		}
	}

	return line, nil
}

func malformedField(field, value string, err error) *errors.AppError {
	return errors.MalformedLineError(fmt.Sprintf("Cannot parse field '%s' from %q", field, value)).WithError(err)
}
