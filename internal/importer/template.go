package importer

import (
	"strings"

	"github.com/aurumcrm/customer-import/internal/schema"
)

// TemplateFileName is the suggested download name for the import template.
const TemplateFileName = "customers_import_template.csv"

// Template returns the header-only CSV template for bulk customer imports:
// the canonical column names, comma-joined, with a trailing newline.
// Deterministic; calling it twice yields byte-identical output.
func Template() string {
	return strings.Join(schema.CustomerColumns(), ",") + "\n"
}
