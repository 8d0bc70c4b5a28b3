package validators

import "go.mongodb.org/mongo-driver/bson"

var AnnouncementValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"event_id",
			"body",
			"staff_needs",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"event_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"body": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 5000,
			},

			"staff_needs": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": "int",
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"draft",
					"sent",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"sent_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var FormResponseValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"announcement_id",
			"name",
			"role",
			"submitted_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"announcement_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 150,
			},

			"phone": bson.M{
				"bsonType":  "string",
				"maxLength": 20,
			},

			"role": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"message": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"submitted_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
