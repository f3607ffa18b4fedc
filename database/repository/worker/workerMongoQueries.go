package workerRepo

import (
	"context"
	"fmt"
	"regexp"

	"serviq/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Eligible returns candidate workers for a job: approved, verification
// fee paid, currently online, offering the category, and covering the
// job's city (case-insensitive) or pincode.
func (r *MongoWorkerRepo) Eligible(ctx context.Context, crit EligibleCriteria) ([]models.WorkerProfile, error) {
	areaOr := bson.A{}
	if crit.City != "" {
		areaOr = append(areaOr, bson.M{"serviceAreas.city": primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(crit.City) + "$",
			Options: "i",
		}})
	}
	if crit.Pincode != "" {
		areaOr = append(areaOr, bson.M{"serviceAreas.pincode": crit.Pincode})
	}
	if len(areaOr) == 0 {
		return nil, fmt.Errorf("eligible query requires a city or pincode")
	}

	filter := bson.M{
		"verificationStatus":  models.VerificationApproved,
		"verificationFeePaid": true,
		"isOnline":            true,
		"categories":          crit.Category,
		"$or":                 areaOr,
	}

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("eligible worker query failed: %w", err)
	}
	defer cur.Close(ctx)

	var workers []models.WorkerProfile
	if err := cur.All(ctx, &workers); err != nil {
		return nil, fmt.Errorf("failed to decode eligible workers: %w", err)
	}
	return workers, nil
}
