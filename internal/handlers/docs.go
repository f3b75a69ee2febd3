package handlers

import (
	"encoding/json"
	"net/http"

	"exposure-platform/internal/models"
)

type object = map[string]interface{}

func pathParam(name, description string) object {
	return object{
		"name":        name,
		"in":          "path",
		"description": description,
		"required":    true,
		"schema":      object{"type": "string"},
	}
}

func queryParam(name, typ, description string) object {
	return object{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    true,
		"schema":      object{"type": typ},
	}
}

func jsonBody(schema object) object {
	return object{"application/json": object{"schema": schema}}
}

func ref(name string) object {
	return object{"$ref": "#/components/schemas/" + name}
}

// operation builds one OpenAPI operation. responses maps status codes to
// a description and an optional schema.
func operation(summary string, params []object, body object, responses map[string][2]interface{}) object {
	op := object{"summary": summary}
	if len(params) > 0 {
		op["parameters"] = params
	}
	if body != nil {
		op["requestBody"] = object{"required": true, "content": jsonBody(body)}
	}
	out := object{}
	for code, r := range responses {
		resp := object{"description": r[0]}
		if schema, ok := r[1].(object); ok {
			resp["content"] = jsonBody(schema)
		}
		out[code] = resp
	}
	op["responses"] = out
	return op
}

var (
	kindParam  = kindPathParam()
	idParam    = pathParam("id", "Entry id")
	fieldParam = pathParam("field", "Field key, e.g. age or wind_speed_max")
	entryParms = []object{kindParam, idParam}
	fieldParms = []object{kindParam, idParam, fieldParam}
)

func kindPathParam() object {
	kinds := make([]string, len(models.Kinds))
	for i, k := range models.Kinds {
		kinds[i] = string(k)
	}
	p := pathParam("kind", "Record kind")
	p["schema"] = object{"type": "string", "enum": kinds}
	return p
}

func errorResponse(description string) [2]interface{} {
	return [2]interface{}{description, ref("Error")}
}

func entryResponse(description string) [2]interface{} {
	return [2]interface{}{description, ref("Entry")}
}

func openAPIDocument() object {
	notFound := errorResponse("Entry not found")
	badRequest := errorResponse("Unknown kind or field")

	return object{
		"openapi": "3.0.0",
		"info": object{
			"title":       "Exposure Study API",
			"description": "Editing workspace for worker exposure study records with field validation and unit conversion",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": object{
			entriesPath: object{
				"get": operation("List open entries of a kind", []object{kindParam}, nil, map[string][2]interface{}{
					"200": {"Entries in cache order", ref("EntryList")},
					"400": badRequest,
				}),
				"post": operation("Create a default entry", []object{kindParam}, nil, map[string][2]interface{}{
					"201": entryResponse("Created entry, stored on first save"),
					"400": badRequest,
				}),
			},
			entryPath: object{
				"get": operation("Get one entry", entryParms, nil, map[string][2]interface{}{
					"200": entryResponse("Entry"),
					"404": notFound,
				}),
				"delete": operation("Delete an entry", entryParms, nil, map[string][2]interface{}{
					"204": {"Deleted", nil},
					"404": notFound,
				}),
			},
			fieldPath: object{
				"put": operation("Set a field from raw input", fieldParms, ref("FieldRequest"), map[string][2]interface{}{
					"200": entryResponse("Input accepted"),
					"400": badRequest,
					"404": notFound,
					"422": errorResponse("Input rejected; the entry carries the message"),
				}),
			},
			unitPath: object{
				"put": operation("Change the display unit of a quantity field", fieldParms, ref("UnitRequest"), map[string][2]interface{}{
					"200": entryResponse("Unit changed"),
					"400": badRequest,
					"404": notFound,
				}),
			},
			savePath: object{
				"post": operation("Commit the working copy", entryParms, nil, map[string][2]interface{}{
					"200": entryResponse("Saved"),
					"404": notFound,
					"422": errorResponse("Entry has validation errors"),
				}),
			},
			cancelPath: object{
				"post": operation("Discard pending edits", entryParms, nil, map[string][2]interface{}{
					"200": entryResponse("Restored to the committed copy"),
					"404": notFound,
				}),
			},
			changesPath: object{
				"get": operation("Pending edits as a diff-match-patch patch", entryParms, nil, map[string][2]interface{}{
					"200": {"Change set", object{"type": "object"}},
					"404": notFound,
				}),
			},
			convertPath: object{
				"get": operation("Convert a value between units", []object{
					queryParam("family", "string", "Quantity family, e.g. temperature"),
					queryParam("value", "number", "Value to convert"),
					queryParam("from", "string", "Source unit symbol"),
					queryParam("to", "string", "Target unit symbol"),
				}, nil, map[string][2]interface{}{
					"200": {"Conversion", object{"type": "object"}},
					"400": errorResponse("Unknown family or unit"),
				}),
			},
			unitsPath: object{
				"get": operation("Unit symbols of every quantity family", nil, nil, map[string][2]interface{}{
					"200": {"Families", object{"type": "object"}},
				}),
			},
			summaryPath: object{
				"get": operation("Open entries per kind", nil, nil, map[string][2]interface{}{
					"200": {"Summary", object{"type": "array"}},
				}),
			},
			eventsPath: object{
				"get": operation("Websocket stream of entry events (added, updated, deleted)", []object{
					{"name": "kind", "in": "query", "required": false, "schema": object{"type": "string"}},
				}, nil, map[string][2]interface{}{
					"101": {"Switching to websocket", nil},
				}),
			},
			healthPath: object{
				"get": operation("Health check", nil, nil, map[string][2]interface{}{
					"200": {"API and storage are healthy", object{"type": "object"}},
					"503": {"Storage is unavailable", object{"type": "object"}},
				}),
			},
			"/metrics": object{
				"get": operation("Prometheus metrics", nil, nil, map[string][2]interface{}{
					"200": {"Prometheus metrics in text format", nil},
				}),
			},
		},
		"components": object{
			"schemas": object{
				"Entry": object{
					"type": "object",
					"properties": object{
						"kind":   object{"type": "string"},
						"id":     object{"type": "string", "format": "uuid"},
						"name":   object{"type": "string"},
						"state":  object{"type": "string", "enum": []string{"clean", "dirty", "invalid"}},
						"valid":  object{"type": "boolean"},
						"dirty":  object{"type": "boolean"},
						"fields": object{"type": "array", "items": object{"type": "object"}},
						"record": object{"type": "object"},
					},
				},
				"EntryList": object{
					"type": "object",
					"properties": object{
						"kind":    object{"type": "string"},
						"entries": object{"type": "array", "items": ref("Entry")},
						"total":   object{"type": "integer"},
					},
				},
				"FieldRequest": object{
					"type": "object",
					"properties": object{
						"text": object{"type": "string"},
						"unit": object{"type": "string"},
					},
				},
				"UnitRequest": object{
					"type":       "object",
					"properties": object{"unit": object{"type": "string"}},
				},
				"Error": object{
					"type": "object",
					"properties": object{
						"error":   object{"type": "string"},
						"message": object{"type": "string"},
						"code":    object{"type": "integer"},
						"entry":   ref("Entry"),
					},
				},
			},
		},
	}
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the study API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(openAPIDocument())
}
