package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"serviq/models"

	"go.mongodb.org/mongo-driver/bson"
)

// conditionalUpdate runs one UpdateOne whose filter encodes the expected
// prior state. MatchedCount == 0 means another writer won the race (or
// the booking does not exist); callers that need to distinguish the two
// re-read the document.
func (r *MongoBookingRepo) conditionalUpdate(ctx context.Context, filter, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("conditional booking update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

func (r *MongoBookingRepo) AssignIfUnassigned(ctx context.Context, id, workerID, mode, reason string, log models.StatusLog) error {
	filter := bson.M{
		"id":       id,
		"status":   models.StatusConfirmed,
		"workerId": "",
	}
	update := bson.M{
		"$set": bson.M{
			"workerId":         workerID,
			"status":           models.StatusAssigned,
			"assignmentMode":   mode,
			"assignmentReason": reason,
			"updatedAt":        time.Now().UTC(),
		},
		"$push": bson.M{"statusLogs": log},
	}
	return r.conditionalUpdate(ctx, filter, update)
}

func (r *MongoBookingRepo) ReassignWorker(ctx context.Context, id string, prev Snapshot, nextWorkerID, reason string, log models.StatusLog) error {
	filter := bson.M{
		"id":       id,
		"status":   prev.Status,
		"workerId": prev.WorkerID,
	}
	update := bson.M{
		"$set": bson.M{
			"workerId":         nextWorkerID,
			"status":           models.StatusAssigned,
			"assignmentMode":   models.AssignmentAuto,
			"assignmentReason": reason,
			"updatedAt":        time.Now().UTC(),
		},
		"$push": bson.M{"statusLogs": log},
	}
	return r.conditionalUpdate(ctx, filter, update)
}

func (r *MongoBookingRepo) Unassign(ctx context.Context, id string, prev Snapshot, log models.StatusLog) error {
	filter := bson.M{
		"id":       id,
		"status":   prev.Status,
		"workerId": prev.WorkerID,
	}
	update := bson.M{
		"$set": bson.M{
			"workerId":         "",
			"status":           models.StatusConfirmed,
			"assignmentMode":   "",
			"assignmentReason": "",
			"conversationId":   "",
			"updatedAt":        time.Now().UTC(),
		},
		"$push": bson.M{"statusLogs": log},
	}
	return r.conditionalUpdate(ctx, filter, update)
}

func (r *MongoBookingRepo) UpdateStatusIf(ctx context.Context, id string, change StatusChange) error {
	filter := bson.M{
		"id":     id,
		"status": change.From,
	}
	set := bson.M{
		"status":    change.To,
		"updatedAt": time.Now().UTC(),
	}
	if change.ReportWindowEnds != nil {
		set["reportWindowEnds"] = *change.ReportWindowEnds
	}
	if change.CancellationFee != nil {
		set["cancellationFee"] = *change.CancellationFee
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"statusLogs": change.Log},
	}
	return r.conditionalUpdate(ctx, filter, update)
}

func (r *MongoBookingRepo) UpdateSlot(ctx context.Context, id string, prev Snapshot, newSlot time.Time, log models.StatusLog) error {
	filter := bson.M{
		"id":       id,
		"status":   prev.Status,
		"workerId": prev.WorkerID,
	}
	update := bson.M{
		"$set": bson.M{
			"slotTime":  newSlot.UTC().Truncate(time.Minute),
			"updatedAt": time.Now().UTC(),
		},
		"$push": bson.M{"statusLogs": log},
	}
	return r.conditionalUpdate(ctx, filter, update)
}
