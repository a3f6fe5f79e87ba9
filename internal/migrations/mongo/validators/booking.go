package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"date",
			"startTime",
			"endTime",
			"clientName",
			"clientEmail",
			"clientPhone",
			"serviceType",
			"status",
			"createdAt",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"startTime": bson.M{
				"bsonType": "string",
				"pattern":  `^(0?[1-9]|1[0-2]):[0-5][0-9] (AM|PM)$`,
			},

			"endTime": bson.M{
				"bsonType": "string",
				"pattern":  `^(0?[1-9]|1[0-2]):[0-5][0-9] (AM|PM)$`,
			},

			"clientName": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"clientEmail": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"clientPhone": bson.M{
				"bsonType":  "string",
				"minLength": 7,
				"maxLength": 20,
			},

			"serviceType": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"status": bson.M{
				"enum": []string{"pending_confirmation", "confirmed", "cancelled"},
			},

			"createdAt": bson.M{
				"bsonType": "date",
			},
		},
	},
}
