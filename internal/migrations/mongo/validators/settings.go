package validators

import "go.mongodb.org/mongo-driver/bson"

var StaffSettingsValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"account_id",
			"ratios",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"account_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"ratios": bson.M{
				"bsonType": "object",
			},

			"auto_replace_after": bson.M{
				"bsonType": []string{"long", "int"},
				"minimum":  0,
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
