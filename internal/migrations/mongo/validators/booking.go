package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"id",
			"customer_name",
			"phone",
			"seats",
			"total_price",
			"booking_date",
			"status",
			"payment_deadline",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"id": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 30,
			},

			"customer_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"phone": bson.M{
				"bsonType":  "string",
				"minLength": 9,
				"maxLength": 16,
			},

			"seats": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"table_id", "seat_number", "zone"},
					"properties": bson.M{
						"table_id": bson.M{
							"bsonType": "int",
							"minimum":  1,
						},
						"seat_number": bson.M{
							"bsonType": "int",
							"minimum":  1,
						},
						"zone": bson.M{
							"bsonType": "string",
						},
						"table_name": bson.M{
							"bsonType": "string",
						},
					},
				},
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"total_price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"booking_date": bson.M{
				"bsonType": "string",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending_payment",
					"confirmed",
					"cancelled",
					"payment_timeout",
				},
			},

			"payment_proof": bson.M{
				"bsonType": "string",
			},

			"payment_deadline": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
