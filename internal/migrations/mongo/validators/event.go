package validators

import "go.mongodb.org/mongo-driver/bson"

var EventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"date",
			"guest_count",
			"event_type",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 150,
			},

			"date": bson.M{
				"bsonType": "date",
			},

			"time_of_day": bson.M{
				"bsonType":  "string",
				"maxLength": 50,
			},

			"venue": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"guest_count": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  10000,
			},

			"event_type": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"prospect",
					"quote_sent",
					"appointment",
					"confirmed",
					"in_progress",
					"completed",
					"cancelled",
				},
			},

			"staff_override": bson.M{
				"bsonType": "object",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
