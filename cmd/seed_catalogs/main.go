// seed_catalogs genera el script SQL que siembra los catálogos de referencia del parqueo
// (estados de lugar, estados de pago y formas de pago) a partir de un CSV "tabla;valor".
//
// Uso: go run ./cmd/seed_catalogs [ruta/catalogs.csv]
// Por defecto lee internal/infrastructure/postgres/migrations/catalogs.csv.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_catalogs.sql
//
// El CSV puede venir en UTF-8 o en ISO-8859-1 (exportaciones de hojas de cálculo).
package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogColumns tabla -> columna única donde se inserta el valor. El orden es el de salida.
var catalogColumns = []struct {
	table  string
	column string
}{
	{"spot_states", "name"},
	{"payment_states", "description"},
	{"payment_methods", "description"},
}

type catalogRow struct {
	table string
	value string
}

func main() {
	moduleRoot := findModuleRoot()
	migrationsDir := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations")

	csvPath := filepath.Join(migrationsDir, "catalogs.csv")
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	rows, err := readCatalogs(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar CSV: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(migrationsDir, "002_seed_catalogs.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d valores\n", outPath, len(rows))
}

// readCatalogs parsea el CSV separado por ';' con cabecera "tabla;valor".
// Si el contenido no es UTF-8 válido se decodifica como ISO-8859-1.
func readCatalogs(raw []byte) ([]catalogRow, error) {
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}
	r := csv.NewReader(src)
	r.Comma = ';'
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(catalogColumns))
	for _, c := range catalogColumns {
		known[c.table] = true
	}

	var rows []catalogRow
	seen := make(map[catalogRow]bool)
	for i, rec := range records {
		table := strings.ToLower(strings.TrimSpace(rec[0]))
		value := strings.TrimSpace(rec[1])
		if i == 0 && table == "tabla" {
			continue
		}
		if table == "" || value == "" {
			continue
		}
		if !known[table] {
			return nil, fmt.Errorf("línea %d: tabla desconocida %q", i+1, rec[0])
		}
		row := catalogRow{table: table, value: value}
		if seen[row] {
			continue
		}
		seen[row] = true
		rows = append(rows, row)
	}
	return rows, nil
}

// writeSQL emite un INSERT ... ON CONFLICT DO NOTHING por catálogo, respetando el orden del CSV.
func writeSQL(w io.Writer, rows []catalogRow) error {
	var b strings.Builder
	b.WriteString("-- Catálogos de referencia del parqueo\n")
	b.WriteString("-- Generado por cmd/seed_catalogs desde catalogs.csv\n")

	for _, c := range catalogColumns {
		var values []string
		for _, r := range rows {
			if r.table == c.table {
				values = append(values, r.value)
			}
		}
		if len(values) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n-- %s\n", c.table)
		fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES\n", c.table, c.column)
		for i, v := range values {
			sep := ","
			if i == len(values)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "  ('%s')%s\n", escapeSQL(v), sep)
		}
		fmt.Fprintf(&b, "ON CONFLICT (%s) DO NOTHING;\n", c.column)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
