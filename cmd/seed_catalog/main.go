// seed_catalog genera un script SQL con depósitos, productos y relaciones fraccionadas
// a partir de un XML exportado por el sistema anterior (suele venir en ISO-8859-1).
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.xml]
// Por defecto busca catalogo.xml en el directorio actual.
// Escribe: migrations/0002_seed_catalog.sql
package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

type catalog struct {
	Deposits []depositXML `xml:"depositos>deposito"`
	Products []productXML `xml:"produtos>produto"`
}

type depositXML struct {
	ID     string `xml:"id,attr"`
	Codigo string `xml:"codigo,attr"`
	Nome   string `xml:"nome,attr"`
}

type productXML struct {
	ID       string        `xml:"id,attr"`
	SKU      string        `xml:"sku,attr"`
	Nome     string        `xml:"nome,attr"`
	Unidade  string        `xml:"unidade,attr"`
	Custo    string        `xml:"custo,attr"`
	Estoques []stockXML    `xml:"estoque"`
	Fracoes  []fractionXML `xml:"fracao"`
}

type stockXML struct {
	Deposito   string `xml:"deposito,attr"`
	Quantidade string `xml:"quantidade,attr"`
}

type fractionXML struct {
	Produto    string `xml:"produto,attr"`
	Origem     string `xml:"origem,attr"`
	Quantidade string `xml:"quantidade,attr"`
}

func main() {
	xmlPath := "catalogo.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	c, err := decodeCatalog(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(findModuleRoot(), "migrations", "0002_seed_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, c); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d depósitos, %d productos\n", outPath, len(c.Deposits), len(c.Products))
}

func decodeCatalog(r io.Reader) (*catalog, error) {
	var c catalog
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// writeSQL escribe depósitos, productos, stock y aristas en ese orden; cada sentencia es idempotente.
func writeSQL(w io.Writer, c *catalog) error {
	var b strings.Builder
	b.WriteString("-- Catálogo inicial (generado por cmd/seed_catalog)\n\n")

	b.WriteString("-- 1. Depósitos\n")
	for _, d := range c.Deposits {
		fmt.Fprintf(&b, "INSERT INTO deposits (id, code, name) VALUES ('%s', '%s', '%s') ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;\n",
			escapeSQL(d.ID), escapeSQL(d.Codigo), escapeSQL(d.Nome))
	}

	b.WriteString("\n-- 2. Productos\n")
	for _, p := range c.Products {
		fmt.Fprintf(&b, "INSERT INTO products (id, sku, name, unit, cost, fractional_active) VALUES ('%s', '%s', '%s', '%s', %s, %t) ON CONFLICT (id) DO NOTHING;\n",
			escapeSQL(p.ID), escapeSQL(p.SKU), escapeSQL(p.Nome), escapeSQL(entity.NormalizeUnit(p.Unidade)),
			numberOrZero(p.Custo), len(p.Fracoes) > 0)
	}

	b.WriteString("\n-- 3. Stock por depósito\n")
	for _, p := range c.Products {
		for _, s := range p.Estoques {
			fmt.Fprintf(&b, "INSERT INTO product_stocks (product_id, deposit_id, quantity, unit) VALUES ('%s', '%s', %s, '%s') ON CONFLICT (product_id, deposit_id) DO UPDATE SET quantity = EXCLUDED.quantity;\n",
				escapeSQL(p.ID), escapeSQL(s.Deposito), numberOrZero(s.Quantidade), escapeSQL(entity.NormalizeUnit(p.Unidade)))
		}
	}

	b.WriteString("\n-- 4. Relaciones fraccionadas\n")
	for _, p := range c.Products {
		for i, fr := range p.Fracoes {
			fmt.Fprintf(&b, "INSERT INTO product_fraction_items (parent_id, position, child_id, origin_quantity, fraction_quantity) VALUES ('%s', %d, '%s', %s, %s) ON CONFLICT DO NOTHING;\n",
				escapeSQL(p.ID), i, escapeSQL(fr.Produto), numberOrZero(fr.Origem), numberOrZero(fr.Quantidade))
			fmt.Fprintf(&b, "UPDATE products SET fractioned_from = '%s' WHERE id = '%s';\n", escapeSQL(p.ID), escapeSQL(fr.Produto))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// numberOrZero acepta coma decimal ("1,5") del formato exportado.
func numberOrZero(s string) string {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return "0"
	}
	return d.String()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "'", "''")
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
