package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// DynamoConfig - параметры хранилища объектов на DynamoDB.
// Таблица: ключ раздела collection (S), ключ сортировки sk (S).
type DynamoConfig struct {
	Table           string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// DynamoStore хранит объекты коллекции в одном разделе, упорядоченные по времени создания
type DynamoStore struct {
	client *dynamodb.Client
	table  string
	now    func() time.Time
}

type dynamoItem struct {
	Collection string         `dynamodbav:"collection"`
	SortKey    string         `dynamodbav:"sk"`
	ID         string         `dynamodbav:"id"`
	CreatedAt  int64          `dynamodbav:"createdAt"`
	ObjectData map[string]any `dynamodbav:"objectData"`
}

func NewDynamoStore(ctx context.Context, cfg DynamoConfig) (*DynamoStore, error) {
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("DynamoDB table name cannot be empty")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &DynamoStore{client: client, table: cfg.Table, now: time.Now}, nil
}

func (s *DynamoStore) List(ctx context.Context, collection string, limit int, newestFirst bool) ([]Item, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("#c = :c"),
		ExpressionAttributeNames: map[string]string{
			"#c": "collection",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: collection},
		},
		ScanIndexForward: aws.Bool(!newestFirst),
	}

	return s.query(ctx, "list "+collection, input, normalizeLimit(limit))
}

// Find фильтрует по полям objectData. Limit в DynamoDB применяется до фильтра,
// поэтому страницы читаются, пока не наберётся limit совпадений.
func (s *DynamoStore) Find(ctx context.Context, collection string, filter Filter, limit int) ([]Item, error) {
	names := map[string]string{"#c": "collection", "#d": "objectData"}
	values := map[string]types.AttributeValue{
		":c": &types.AttributeValueMemberS{Value: collection},
	}

	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	conditions := make([]string, 0, len(keys))
	for i, key := range keys {
		name, value := "#f"+strconv.Itoa(i), ":v"+strconv.Itoa(i)
		names[name] = key
		values[value] = &types.AttributeValueMemberS{Value: filter[key]}
		conditions = append(conditions, "#d."+name+" = "+value)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    aws.String("#c = :c"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(false),
	}
	if len(conditions) > 0 {
		input.FilterExpression = aws.String(strings.Join(conditions, " AND "))
	}

	return s.query(ctx, "find "+collection, input, normalizeLimit(limit))
}

func (s *DynamoStore) Create(ctx context.Context, collection string, data any) (Item, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Item{}, fmt.Errorf("ошибка сериализации объекта: %w", err)
	}

	var objectData map[string]any
	if err := json.Unmarshal(raw, &objectData); err != nil {
		return Item{}, fmt.Errorf("объект должен быть JSON-объектом: %w", err)
	}

	now := s.now().UTC()
	id := uuid.NewString()
	record := dynamoItem{
		Collection: collection,
		SortKey:    fmt.Sprintf("%020d#%s", now.UnixNano(), id),
		ID:         id,
		CreatedAt:  now.UnixNano(),
		ObjectData: objectData,
	}

	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return Item{}, fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(sk)"),
	})
	if err != nil {
		return Item{}, classifyAWSError("create "+collection, err)
	}

	return Item{ID: id, Data: raw, CreatedAt: now}, nil
}

func (s *DynamoStore) query(ctx context.Context, op string, input *dynamodb.QueryInput, limit int) ([]Item, error) {
	var items []Item

	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() && len(items) < limit {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyAWSError(op, err)
		}

		var records []dynamoItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &records); err != nil {
			return nil, serverError(op, fmt.Errorf("failed to unmarshal items: %w", err))
		}

		for _, rec := range records {
			if len(items) == limit {
				break
			}
			raw, err := json.Marshal(rec.ObjectData)
			if err != nil {
				return nil, serverError(op, err)
			}
			items = append(items, Item{
				ID:        rec.ID,
				Data:      raw,
				CreatedAt: time.Unix(0, rec.CreatedAt).UTC(),
			})
		}
	}

	return items, nil
}

func classifyAWSError(op string, err error) error {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return fmt.Errorf("%s: %w", op, &StatusError{
			StatusCode: respErr.HTTPStatusCode(),
			Message:    respErr.Error(),
		})
	}
	return transportError(op, err)
}
