package validators

import "go.mongodb.org/mongo-driver/bson"

var AvailabilityValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"date", "dayName", "slots"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"dayName": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 20,
			},

			"slots": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"id", "time", "available"},
					"properties": bson.M{
						"id": bson.M{
							"bsonType":  "string",
							"minLength": 1,
						},
						"time": bson.M{
							"bsonType": "string",
							"pattern":  `^(0?[1-9]|1[0-2]):[0-5][0-9] (AM|PM)$`,
						},
						"available": bson.M{
							"bsonType": "bool",
						},
					},
				},
			},
		},
	},
}
