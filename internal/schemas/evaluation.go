package schemas

// EvaluationResultSchema describes the JSON shape the model must return
// when scoring a document. Category names vary by rubric, so
// category_scores only constrains the per-category value shape. Models
// sometimes return bare numbers instead of score objects, so both are
// accepted; normalization happens downstream.
const EvaluationResultSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "EvaluationResult",
  "type": "object",
  "required": ["category_scores", "summary"],
  "properties": {
    "category_scores": {
      "type": "object",
      "additionalProperties": {
        "oneOf": [
          {
            "type": "number",
            "minimum": 0
          },
          {
            "type": "object",
            "required": ["score"],
            "properties": {
              "score": {"type": "number", "minimum": 0},
              "max_score": {"type": "number", "minimum": 0},
              "reason": {"type": "string"}
            }
          }
        ]
      }
    },
    "total_score": {
      "type": "number",
      "minimum": 0
    },
    "max_score": {
      "type": "number",
      "minimum": 0
    },
    "grade": {
      "type": "string"
    },
    "summary": {
      "type": "string",
      "minLength": 1
    },
    "top_recommendations": {
      "type": "array",
      "items": {
        "type": "string"
      }
    }
  }
}`
