package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/streamflux/blobstore"
)

// CurrentKey is the virtual blob name holding the name of the latest
// committed snapshot.
const CurrentKey = "CURRENT"

// ErrConcurrentCommit is returned when another publisher won the commit race.
var ErrConcurrentCommit = errors.New("concurrent snapshot commit detected")

// DDBClient is the subset of the DynamoDB API used by the commit store.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// CommitStore layers atomic CURRENT-pointer commits on top of an S3 store.
//
// S3 holds the snapshot bytes; DynamoDB supplies the conditional-write
// compare-and-swap S3 lacks, so concurrent publishers of a recalibrated
// stream catalog cannot clobber each other. Reads and writes of any name
// other than CurrentKey pass straight through to S3.
//
// Table schema: partition key base_uri (S), sort key version (N); the item
// attribute snapshot_name holds the committed snapshot's blob name.
type CommitStore struct {
	store     *Store
	ddb       DDBClient
	tableName string
	baseURI   string
}

// NewCommitStore creates a commit store. baseURI (e.g. "s3://bucket/prefix")
// is the partition key for this catalog's commit history.
func NewCommitStore(store *Store, ddb DDBClient, tableName, baseURI string) *CommitStore {
	return &CommitStore{
		store:     store,
		ddb:       ddb,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

// Open opens a blob. Opening CurrentKey reads the latest committed snapshot
// name from DynamoDB.
func (s *CommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name != CurrentKey {
		return s.store.Open(ctx, name)
	}

	version, snapshotName, err := s.latestVersion(ctx)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return &pointerBlob{content: []byte(snapshotName)}, nil
}

// Put writes a blob. Putting CurrentKey commits data as the new snapshot
// name via a conditional write.
func (s *CommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name != CurrentKey {
		return s.store.Put(ctx, name, data)
	}
	return s.commit(ctx, string(data))
}

// Create passes through to S3. CurrentKey cannot be streamed; commit it with
// Put.
func (s *CommitStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if name == CurrentKey {
		return nil, fmt.Errorf("commit %s with Put, not Create", CurrentKey)
	}
	return s.store.Create(ctx, name)
}

// Delete passes through to S3.
func (s *CommitStore) Delete(ctx context.Context, name string) error {
	return s.store.Delete(ctx, name)
}

// List passes through to S3.
func (s *CommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.store.List(ctx, prefix)
}

func (s *CommitStore) latestVersion(ctx context.Context) (uint64, string, error) {
	resp, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("query commit log: %w", err)
	}
	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("commit log item missing version attribute")
	}
	nameAttr, ok := item["snapshot_name"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("commit log item missing snapshot_name attribute")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("parse commit version: %w", err)
	}
	return version, nameAttr.Value, nil
}

func (s *CommitStore) commit(ctx context.Context, snapshotName string) error {
	current, _, err := s.latestVersion(ctx)
	if err != nil {
		return err
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri":      &types.AttributeValueMemberS{Value: s.baseURI},
			"version":       &types.AttributeValueMemberN{Value: strconv.FormatUint(current+1, 10)},
			"snapshot_name": &types.AttributeValueMemberS{Value: snapshotName},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentCommit
		}
		return fmt.Errorf("commit snapshot version: %w", err)
	}
	return nil
}

// pointerBlob serves the CURRENT pointer content from memory.
type pointerBlob struct {
	content []byte
}

func (b *pointerBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off >= int64(len(b.content)) {
		return 0, io.EOF
	}
	n := copy(p, b.content[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *pointerBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= int64(len(b.content)) {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	end := min(off+length, int64(len(b.content)))
	return io.NopCloser(bytes.NewReader(b.content[off:end])), nil
}

func (b *pointerBlob) Size() int64 {
	return int64(len(b.content))
}

func (b *pointerBlob) Close() error {
	return nil
}
