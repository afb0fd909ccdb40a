package message

import (
	"context"
	"errors"

	"github.com/xh-polaris/chat-relay/biz/infra/config"
	"github.com/xh-polaris/chat-relay/biz/infra/cst"
	"github.com/xh-polaris/chat-relay/pkg/errorx"
	"github.com/xh-polaris/chat-relay/pkg/logs"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ MongoMapper = (*mongoMapper)(nil)

const (
	collection = "message"
)

type MongoMapper interface {
	InsertOne(ctx context.Context, msg *Message) error
	ListMessage(ctx context.Context, conversation string) (msgs []*Message, err error)
	LastMessages(ctx context.Context, conversations []bson.ObjectID) (last map[bson.ObjectID]*Message, err error)
}

type mongoMapper struct {
	conn *monc.Model
}

func NewMessageMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	m := &mongoMapper{conn: conn}
	if _, err := conn.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: cst.ConversationId, Value: 1}, {Key: cst.CreateTime, Value: 1}, {Key: cst.Id, Value: 1}},
	}); err != nil {
		logs.Errorf("[mapper] [message] ensure indexes err:%s", errorx.ErrorWithoutStack(err))
	}
	return m
}

// InsertOne 插入一条msg, 消息不走缓存
func (m *mongoMapper) InsertOne(ctx context.Context, msg *Message) error {
	_, err := m.conn.InsertOneNoCache(ctx, msg)
	return err
}

// ListMessage 按创建时间正序取出对话的全部消息, 时间相同按id排序
func (m *mongoMapper) ListMessage(ctx context.Context, conversation string) (msgs []*Message, err error) {
	oid, err := bson.ObjectIDFromHex(conversation)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: cst.CreateTime, Value: 1}, {Key: cst.Id, Value: 1}})
	if err = m.conn.Find(ctx, &msgs, bson.M{cst.ConversationId: oid}, opts); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		logs.CtxErrorf(ctx, "[mapper] [message] [ListMessage] find err:%s", errorx.ErrorWithoutStack(err))
		return nil, err
	}
	return msgs, nil
}

// LastMessages 批量获取每个对话的最后一条消息, 用于对话列表预览
func (m *mongoMapper) LastMessages(ctx context.Context, conversations []bson.ObjectID) (last map[bson.ObjectID]*Message, err error) {
	last = make(map[bson.ObjectID]*Message, len(conversations))
	if len(conversations) == 0 {
		return last, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{cst.ConversationId: bson.M{cst.In: conversations}}}},
		{{Key: "$sort", Value: bson.D{{Key: cst.CreateTime, Value: -1}, {Key: cst.Id, Value: -1}}}},
		{{Key: "$group", Value: bson.M{cst.Id: "$" + cst.ConversationId, "last": bson.M{"$first": "$$ROOT"}}}},
	}
	var rows []struct {
		ConversationId bson.ObjectID `bson:"_id"`
		Last           *Message      `bson:"last"`
	}
	if err = m.conn.Aggregate(ctx, &rows, pipeline); err != nil {
		logs.CtxErrorf(ctx, "[mapper] [message] [LastMessages] aggregate err:%s", errorx.ErrorWithoutStack(err))
		return nil, err
	}
	for _, r := range rows {
		last[r.ConversationId] = r.Last
	}
	return last, nil
}
