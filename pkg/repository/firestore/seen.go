package firestore

import (
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/domain/model"
	"github.com/secmon-lab/atlas/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// SeenCollection is the collection holding seen records
	SeenCollection = "seen_records"

	// SeenTTLField is the field the collection's TTL policy is bound to
	SeenTTLField = "ExpiresAt"
)

// seenNamespace is the UUIDv5 namespace of seen record document IDs
var seenNamespace = uuid.MustParse("6d1f6c7e-3c55-4c1b-9a77-2f0e2c4a9b31")

// seenDoc is the Firestore document representation of model.SeenRecord
type seenDoc struct {
	Channel   string    `firestore:"Channel"`
	Issue     string    `firestore:"Issue"`
	SeenAt    time.Time `firestore:"SeenAt"`
	ExpiresAt time.Time `firestore:"ExpiresAt"`
}

type seenRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSeenRepository(client *firestore.Client) *seenRepository {
	return &seenRepository{client: client}
}

func (r *seenRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + SeenCollection)
}

// seenDocID derives a stable document ID from the key. Channel names may
// contain '/', which Firestore does not allow in IDs.
func seenDocID(key model.SeenKey) string {
	data := strconv.Itoa(len(key.Channel)) + ":" + key.Channel + ":" + key.Issue.String()
	return uuid.NewSHA1(seenNamespace, []byte(data)).String()
}

func (r *seenRepository) Put(ctx context.Context, record *model.SeenRecord) error {
	if err := record.Key.Validate(); err != nil {
		return goerr.Wrap(err, "invalid seen record")
	}

	doc := &seenDoc{
		Channel:   record.Key.Channel,
		Issue:     record.Key.Issue.String(),
		SeenAt:    record.SeenAt.UTC(),
		ExpiresAt: record.ExpiresAt.UTC(),
	}

	if _, err := r.collection().Doc(seenDocID(record.Key)).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put seen record to firestore",
			goerr.V("channel", record.Key.Channel),
			goerr.V("issue", record.Key.Issue),
		)
	}
	return nil
}

func (r *seenRepository) Get(ctx context.Context, key model.SeenKey) (*model.SeenRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid seen key")
	}

	snap, err := r.collection().Doc(seenDocID(key)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get seen record from firestore",
			goerr.V("channel", key.Channel),
			goerr.V("issue", key.Issue),
		)
	}

	var doc seenDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal seen record", goerr.V("issue", key.Issue))
	}

	return &model.SeenRecord{
		Key:       model.SeenKey{Channel: doc.Channel, Issue: types.IssueKey(doc.Issue)},
		SeenAt:    doc.SeenAt,
		ExpiresAt: doc.ExpiresAt,
	}, nil
}

// Prune deletes expired records. The TTL policy removes them eventually
// (typically within a day), so this is only needed to reclaim storage sooner.
func (r *seenRepository) Prune(ctx context.Context, before time.Time) (int, error) {
	const batchSize = 500
	totalDeleted := 0

	for {
		iter := r.collection().
			Where(SeenTTLField, "<=", before).
			Limit(batchSize).
			Documents(ctx)
		bulkWriter := r.client.BulkWriter(ctx)
		count := 0

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				bulkWriter.End()
				return totalDeleted, goerr.Wrap(err, "failed to iterate seen records for deletion")
			}

			if _, err := bulkWriter.Delete(doc.Ref); err != nil {
				iter.Stop()
				bulkWriter.End()
				return totalDeleted, goerr.Wrap(err, "failed to delete seen record", goerr.V("id", doc.Ref.ID))
			}
			count++
		}
		iter.Stop()
		bulkWriter.End()

		totalDeleted += count
		if count < batchSize {
			break
		}
	}

	return totalDeleted, nil
}
