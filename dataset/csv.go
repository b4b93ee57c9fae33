package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Khayman1/titanic-streamlit/schema"
)

// ============================================================================
// CSV PARSER — Raw CSV bytes → Table of Passengers
// ============================================================================
// The header is validated against the resource contract. Every row must have
// exactly as many fields as the header; a short or long row makes the whole
// resource unavailable rather than being skipped.
// ============================================================================

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV parses CSV bytes for res into a Table.
// Errors are *ResourceError values wrapping ErrResourceUnavailable.
func ParseCSV(data []byte, res Resource) (*Table, error) {
	if !res.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, string(res))
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = 0 // header fixes the column count

	header, err := reader.Read()
	if err == io.EOF {
		return nil, unavailable(res, "", errors.New("empty file"))
	}
	if err != nil {
		return nil, unavailable(res, "", fmt.Errorf("failed to read CSV header: %w", err))
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	contract := res.Contract()
	if err := contract.Validate(header); err != nil {
		return nil, unavailable(res, "", err)
	}
	index := schema.Index(header)

	table := &Table{
		Resource: res,
		Header:   header,
	}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, unavailable(res, "", fmt.Errorf("row %d: %w", line, err))
		}

		p, err := parsePassenger(row, index)
		if err != nil {
			return nil, unavailable(res, "", fmt.Errorf("row %d: %w", line, err))
		}
		table.Records = append(table.Records, row)
		table.Passengers = append(table.Passengers, p)
	}

	return table, nil
}

// parsePassenger converts one CSV row using the header index.
// Columns absent from the resource keep their zero value.
func parsePassenger(row []string, index map[string]int) (Passenger, error) {
	var p Passenger
	var firstErr error

	field := func(name string) (string, bool) {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	intField := func(name string, required bool) int {
		v, ok := field(name)
		if !ok || firstErr != nil {
			return 0
		}
		if v == "" {
			if required {
				firstErr = fmt.Errorf("column %s: empty value", name)
			}
			return 0
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			firstErr = fmt.Errorf("column %s: %w", name, err)
		}
		return n
	}

	nullInt := func(name string) NullInt {
		v, ok := field(name)
		if !ok || v == "" || firstErr != nil {
			return NullInt{}
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			firstErr = fmt.Errorf("column %s: %w", name, err)
			return NullInt{}
		}
		return Int(n)
	}

	nullFloat := func(name string) NullFloat {
		v, ok := field(name)
		if !ok || v == "" || firstErr != nil {
			return NullFloat{}
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			firstErr = fmt.Errorf("column %s: %w", name, err)
			return NullFloat{}
		}
		return Float(f)
	}

	str := func(name string) string {
		v, _ := field(name)
		return v
	}

	p.ID = intField("PassengerId", true)
	p.Survived = nullInt("Survived")
	p.Pclass = intField("Pclass", true)
	p.Name = str("Name")
	p.Sex = str("Sex")
	p.Age = nullFloat("Age")
	p.SibSp = intField("SibSp", false)
	p.Parch = intField("Parch", false)
	p.Ticket = str("Ticket")
	p.Fare = nullFloat("Fare")
	p.Cabin = str("Cabin")
	p.Embarked = str("Embarked")

	return p, firstErr
}
