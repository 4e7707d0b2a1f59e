package spreader

import "github.com/bridge-group/spreader-cli/internal/model"

// Tool input schemas for structured-output calls. The model is forced to
// call the tool, so the tool input IS the structured result.

func lineItemSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"value": map[string]any{
				"type":        []string{"number", "null"},
				"description": "The amount as printed, null when the row is absent",
			},
			"confidence": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
			"raw_fields_used": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"source_section_hint": map[string]any{"type": "string"},
			"breakdown": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"label": map[string]any{"type": "string"},
						"value": map[string]any{"type": "number"},
					},
					"required": []string{"label", "value"},
				},
			},
		},
		"required": []string{"value", "confidence"},
	}
}

func statementProperties(st model.StatementType) map[string]any {
	var fields []model.NamedItem
	switch st {
	case model.StatementBalance:
		fields = (&model.BalanceSheet{}).Fields()
	default:
		fields = (&model.IncomeStatement{}).Fields()
	}

	props := make(map[string]any, len(fields)+3)
	for _, f := range fields {
		props[f.Name] = lineItemSchema()
	}
	if st == model.StatementBalance {
		props["as_of_date"] = map[string]any{"type": "string"}
	} else {
		props["fiscal_period"] = map[string]any{"type": "string"}
	}
	props["currency"] = map[string]any{"type": "string"}
	props["scale"] = map[string]any{
		"type": "string",
		"description": "units, thousands, or millions as stated on the document",
	}
	return props
}

func statementSchema(st model.StatementType) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": statementProperties(st),
	}
}

func multiPeriodSchema(st model.StatementType) map[string]any {
	return map[string]any{
		"periods": map[string]any{
			"type":        "array",
			"description": "One entry per included period column, most recent first",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"period_label": map[string]any{"type": "string"},
					"end_date":     map[string]any{"type": "string"},
					"statement":    statementSchema(st),
				},
				"required": []string{"period_label", "statement"},
			},
		},
		"currency": map[string]any{"type": "string"},
		"scale":    map[string]any{"type": "string"},
	}
}

func detectionSchema() map[string]any {
	return map[string]any{
		"has_income_statement": map[string]any{"type": "boolean"},
		"has_balance_sheet":    map[string]any{"type": "boolean"},
		"income_statement_pages": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "integer"},
		},
		"balance_sheet_pages": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "integer"},
		},
		"confidence":         map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		"income_confidence":  map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		"balance_confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		"notes":              map[string]any{"type": "string"},
	}
}

func periodDetectionSchema() map[string]any {
	return map[string]any{
		"best_period":   map[string]any{"type": "string"},
		"best_end_date": map[string]any{"type": "string"},
		"confidence":    map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		"candidates": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"label":          map[string]any{"type": "string"},
					"simplified":     map[string]any{"type": "string"},
					"end_date":       map[string]any{"type": "string"},
					"is_most_recent": map[string]any{"type": "boolean"},
					"confidence":     map[string]any{"type": "number", "minimum": 0, "maximum": 1},
					"evidence":       map[string]any{"type": "string"},
				},
				"required": []string{"label", "confidence"},
			},
		},
	}
}

func columnClassificationSchema() map[string]any {
	return map[string]any{
		"period_columns": map[string]any{
			"type":        "array",
			"description": "Real reporting period columns, most recent first",
			"items":       map[string]any{"type": "string"},
		},
		"rollup_columns": map[string]any{
			"type":        "array",
			"description": "Total/YTD/Combined aggregate columns excluded from extraction",
			"items":       map[string]any{"type": "string"},
		},
		"column_order": map[string]any{
			"type":        "array",
			"description": "All value columns left to right as printed",
			"items":       map[string]any{"type": "string"},
		},
		"notes": map[string]any{"type": "string"},
	}
}
