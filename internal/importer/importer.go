// Package importer loads catalog products from CSV exports.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shoppingcart/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads product CSV rows and upserts them by key.
type CSVImporter struct {
	reader  *csv.Reader
	writer  ProductWriter
	defCurr string
}

// NewCSVImporter returns an importer. Rows without a currency fall back to
// defaultCurrency.
func NewCSVImporter(r io.Reader, w ProductWriter, defaultCurrency string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:  csvr,
		writer:  w,
		defCurr: strings.ToUpper(strings.TrimSpace(defaultCurrency)),
	}
}

type csvRow struct {
	line      int
	ID        string
	Key       string
	Name      string
	Desc      string
	SKU       string
	Cents     int64
	Currency  string
	ImageURLs []string
}

// Run parses CSV rows and upserts products. A row without a key but with an
// image URL adds that image to the preceding product.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["key"]; !ok {
		return 0, errors.New("read headers: key column is required")
	}

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if row == nil {
			continue
		}
		row.line = line

		if row.Key != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		if current != nil && len(row.ImageURLs) > 0 {
			current.ImageURLs = append(current.ImageURLs, row.ImageURLs...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	currency := row.Currency
	if currency == "" {
		currency = i.defCurr
	}
	if row.Name == "" || row.SKU == "" || row.Cents <= 0 || currency == "" {
		return fmt.Errorf("line %d: invalid product row (missing required fields) for key %q", row.line, row.Key)
	}
	if row.ID != "" {
		if _, err := uuid.Parse(row.ID); err != nil {
			return fmt.Errorf("line %d: invalid id for key %q: %s", row.line, row.Key, row.ID)
		}
	}

	var attrs map[string]interface{}
	if len(row.ImageURLs) > 0 {
		attrs = map[string]interface{}{"images": row.ImageURLs}
	}

	p := domain.Product{
		ID:          row.ID,
		Key:         row.Key,
		SKU:         row.SKU,
		Name:        row.Name,
		Description: row.Desc,
		PriceCents:  row.Cents,
		Currency:    currency,
		Attributes:  attrs,
	}

	if _, err := i.writer.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Key, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	key := pick(record, index, "key")
	imageURL := pick(record, index, "variants.images.url")
	if key == "" && imageURL == "" {
		return nil, nil
	}

	row := &csvRow{
		ID:       pick(record, index, "id"),
		Key:      key,
		Name:     pick(record, index, "name.en", "name"),
		Desc:     pick(record, index, "description.en", "description"),
		SKU:      pick(record, index, "variants.sku", "sku"),
		Currency: strings.ToUpper(pick(record, index, "variants.prices.value.currencyCode", "currency")),
	}
	if imageURL != "" {
		row.ImageURLs = []string{imageURL}
	}

	if key == "" {
		return row, nil
	}
	cents, err := parseCents(pick(record, index, "variants.prices.value.centAmount"), pick(record, index, "price"))
	if err != nil {
		return nil, fmt.Errorf("price for key %q: %w", key, err)
	}
	row.Cents = cents
	return row, nil
}

// parseCents prefers an integer cent amount and falls back to a decimal
// major-unit price such as "19.99".
func parseCents(centStr, priceStr string) (int64, error) {
	if centStr != "" {
		return strconv.ParseInt(centStr, 10, 64)
	}
	if priceStr == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(priceStr)
	if err != nil {
		return 0, err
	}
	return d.Shift(2).RoundBank(0).IntPart(), nil
}

func pick(record []string, index map[string]int, keys ...string) string {
	for _, key := range keys {
		pos, ok := index[key]
		if !ok || pos >= len(record) {
			continue
		}
		if v := strings.TrimSpace(record[pos]); v != "" {
			return v
		}
	}
	return ""
}
