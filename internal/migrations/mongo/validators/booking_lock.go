package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "expires_at", "created_at"},
		"additionalProperties": false,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  `^booking_lock_\d{4}-\d{2}-\d{2}_\d+$`,
			},

			"expires_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
