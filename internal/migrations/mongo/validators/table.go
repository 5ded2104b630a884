package validators

import "go.mongodb.org/mongo-driver/bson"

var TableValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"id",
			"zone",
			"name",
			"is_active",
			"seats",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"id": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"zone": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"x": bson.M{
				"bsonType": []string{"double", "int", "long"},
			},

			"y": bson.M{
				"bsonType": []string{"double", "int", "long"},
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},

			"seats": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"seat_number", "zone", "is_booked"},
					"properties": bson.M{
						"seat_number": bson.M{
							"bsonType": "int",
							"minimum":  1,
						},
						"zone": bson.M{
							"bsonType": "string",
						},
						"is_booked": bson.M{
							"bsonType": "bool",
						},
					},
				},
			},
		},
	},
}
