// Package docs регистрирует OpenAPI-описание API раундов для /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Проверка доступности",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/tournaments/{tournamentID}/rounds": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Начать раунд",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true},
                    {"description": "Номер раунда (по умолчанию 1)", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handlers.startRoundRequest"}}
                ],
                "responses": {
                    "200": {"description": "Раунд уже существовал", "schema": {"$ref": "#/definitions/services.StartRoundResult"}},
                    "201": {"description": "Раунд создан", "schema": {"$ref": "#/definitions/services.StartRoundResult"}},
                    "401": {"description": "Неавторизован"},
                    "403": {"description": "Не организатор"},
                    "404": {"description": "Турнир не найден"},
                    "409": {"description": "Турнир не в статусе IN_PROGRESS или без участников"},
                    "422": {"description": "Некорректный номер раунда"}
                }
            }
        },
        "/tournaments/{tournamentID}/finalize": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Подвести итоги турнира",
                "parameters": [{"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "standings_written"},
                    "401": {"description": "Неавторизован"},
                    "403": {"description": "Не организатор"},
                    "404": {"description": "Турнир не найден"},
                    "409": {"description": "Турнир не завершен"}
                }
            }
        },
        "/tournaments/{tournamentID}/standings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Итоговая таблица турнира",
                "parameters": [{"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "standings"}, "404": {"description": "Турнир не найден"}}
            }
        },
        "/rounds/{roundID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["rounds"],
                "summary": "Состояние раунда",
                "parameters": [{"type": "integer", "description": "Round Session ID", "name": "roundID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.RoundState"}},
                    "401": {"description": "Неавторизован"},
                    "404": {"description": "Раунд не найден"}
                }
            }
        },
        "/rounds/{roundID}/ready": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["rounds"],
                "summary": "Отметить готовность",
                "parameters": [{"type": "integer", "description": "Round Session ID", "name": "roundID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ReadyResult"}},
                    "401": {"description": "Неавторизован"},
                    "404": {"description": "Игрок не участвует в раунде"}
                }
            }
        },
        "/rounds/{roundID}/holes/{hole}/scores": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rounds"],
                "summary": "Записать результаты по лунке",
                "parameters": [
                    {"type": "integer", "description": "Round Session ID", "name": "roundID", "in": "path", "required": true},
                    {"type": "integer", "description": "Hole number", "name": "hole", "in": "path", "required": true},
                    {"description": "Результаты", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.submitScoresRequest"}}
                ],
                "responses": {
                    "200": {"description": "saved_count"},
                    "400": {"description": "Лунка вне диапазона / некорректный запрос"},
                    "401": {"description": "Неавторизован"},
                    "403": {"description": "Пользователь не участвует в раунде"},
                    "404": {"description": "Раунд не найден"},
                    "409": {"description": "Раунд не в статусе inProgress"},
                    "422": {"description": "Все записи отклонены"}
                }
            }
        },
        "/rounds/{roundID}/scores": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["rounds"],
                "summary": "Результаты раунда",
                "parameters": [{"type": "integer", "description": "Round Session ID", "name": "roundID", "in": "path", "required": true}],
                "responses": {"200": {"description": "scores"}, "404": {"description": "Раунд не найден"}}
            }
        },
        "/rounds/{roundID}/complete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["rounds"],
                "summary": "Завершить раунд",
                "parameters": [{"type": "integer", "description": "Round Session ID", "name": "roundID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "round_session"},
                    "401": {"description": "Неавторизован"},
                    "403": {"description": "Не организатор"},
                    "404": {"description": "Раунд не найден"}
                }
            }
        }
    },
    "definitions": {
        "handlers.startRoundRequest": {
            "type": "object",
            "properties": {"round_number": {"type": "integer"}}
        },
        "handlers.submitScoresRequest": {
            "type": "object",
            "properties": {"entries": {"type": "array", "items": {"$ref": "#/definitions/services.ScoreEntryInput"}}}
        },
        "services.ScoreEntryInput": {
            "type": "object",
            "properties": {"player_id": {"type": "integer"}, "strokes": {"type": "integer"}, "ob_count": {"type": "integer"}}
        },
        "services.StartRoundResult": {
            "type": "object",
            "properties": {"created": {"type": "boolean"}, "round_session": {"$ref": "#/definitions/models.RoundSession"}}
        },
        "models.RoundSession": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "tournament_id": {"type": "integer"},
                "round_number": {"type": "integer"},
                "status": {"type": "string", "enum": ["waiting", "inProgress", "completed"]},
                "expires_at": {"type": "string"},
                "created_at": {"type": "string"},
                "started_at": {"type": "string"},
                "completed_at": {"type": "string"}
            }
        },
        "models.ParticipantState": {
            "type": "object",
            "properties": {"player_id": {"type": "integer"}, "is_ready": {"type": "boolean"}}
        },
        "models.RoundState": {
            "type": "object",
            "properties": {
                "round_session_id": {"type": "integer"},
                "tournament_id": {"type": "integer"},
                "round_number": {"type": "integer"},
                "status": {"type": "string"},
                "expires_at": {"type": "string"},
                "expired": {"type": "boolean"},
                "participants": {"type": "array", "items": {"$ref": "#/definitions/models.ParticipantState"}},
                "ready_count": {"type": "integer"},
                "total": {"type": "integer"},
                "poll_interval_ms": {"type": "integer"}
            }
        },
        "models.ReadyResult": {
            "type": "object",
            "properties": {"did_start": {"type": "boolean"}, "ready_count": {"type": "integer"}, "total": {"type": "integer"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Tournament Rounds API",
	Description:      "Координация раундов турнира: старт, готовность, результаты по лункам, итоговая таблица.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
