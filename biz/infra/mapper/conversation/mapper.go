package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/xh-polaris/chat-relay/biz/application/dto/basic"
	"github.com/xh-polaris/chat-relay/biz/infra/config"
	"github.com/xh-polaris/chat-relay/biz/infra/cst"
	"github.com/xh-polaris/chat-relay/biz/infra/util"
	"github.com/xh-polaris/chat-relay/pkg/errorx"
	"github.com/xh-polaris/chat-relay/pkg/logs"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ MongoMapper = (*mongoMapper)(nil)

const (
	collection     = "conversation"
	cacheKeyPrefix = "cache:conversation:"
)

var (
	ErrNotFound    = errors.New("conversation not found")
	ErrInvalidPair = errors.New("conversation requires two distinct users")
)

type MongoMapper interface {
	FindOrCreate(ctx context.Context, u, v string) (c *Conversation, err error)
	FindById(ctx context.Context, cid string) (c *Conversation, err error)
	ListConversations(ctx context.Context, uid string, page *basic.Page) (cs []*Conversation, hasMore bool, err error)
	Touch(ctx context.Context, cid string, at time.Time) (err error)
}

type mongoMapper struct {
	conn *monc.Model
}

func NewConversationMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	m := &mongoMapper{conn: conn}
	if err := m.ensureIndexes(context.Background()); err != nil {
		logs.Errorf("[mapper] [conversation] ensure indexes err:%s", errorx.ErrorWithoutStack(err))
	}
	return m
}

// ensureIndexes 用户对的唯一索引是并发首次建立对话时的最终保障
func (m *mongoMapper) ensureIndexes(ctx context.Context) error {
	_, err := m.conn.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: cst.User1Id, Value: 1}, {Key: cst.User2Id, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: cst.User2Id, Value: 1}, {Key: cst.UpdateTime, Value: -1}}},
	})
	return err
}

// FindOrCreate 按规范化用户对查找对话, 不存在时创建, 双方任意顺序调用结果相同
func (m *mongoMapper) FindOrCreate(ctx context.Context, u, v string) (*Conversation, error) {
	upsert := func(ctx context.Context, c *Conversation, filter, update bson.M) error {
		opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
		return m.conn.FindOneAndUpdateNoCache(ctx, c, filter, update, opts)
	}
	lookup := func(ctx context.Context, c *Conversation, filter bson.M) error {
		return m.conn.FindOneNoCache(ctx, c, filter)
	}
	return findOrCreate(ctx, u, v, time.Now(), upsert, lookup)
}

type (
	upsertFunc func(ctx context.Context, c *Conversation, filter, update bson.M) error
	lookupFunc func(ctx context.Context, c *Conversation, filter bson.M) error
)

// findOrCreate 以规范化用户对做upsert, 并发创建被唯一索引拒绝时改为查询
func findOrCreate(ctx context.Context, u, v string, now time.Time, upsert upsertFunc, lookup lookupFunc) (c *Conversation, err error) {
	if u == "" || v == "" || u == v {
		return nil, ErrInvalidPair
	}
	u1, u2 := Canonicalize(u, v)
	filter := bson.M{cst.User1Id: u1, cst.User2Id: u2}
	// 用户对字段由filter中的等值条件写入
	update := bson.M{cst.SetOnInsert: bson.M{
		cst.Id:         bson.NewObjectID(),
		cst.CreateTime: now,
		cst.UpdateTime: now,
	}}
	c = new(Conversation)
	err = upsert(ctx, c, filter, update)
	if mongo.IsDuplicateKeyError(err) {
		// 另一方同时创建了该对话, 唯一索引拒绝了本次插入, 改为查询
		logs.CtxInfof(ctx, "[mapper] [conversation] [FindOrCreate] concurrent create for %s|%s, retry as lookup", u1, u2)
		c = new(Conversation)
		err = lookup(ctx, c, filter)
	}
	if err != nil {
		logs.CtxErrorf(ctx, "[mapper] [conversation] [FindOrCreate] err:%s", errorx.ErrorWithoutStack(err))
		return nil, err
	}
	return c, nil
}

// FindById 根据id查询对话, 带缓存
func (m *mongoMapper) FindById(ctx context.Context, cid string) (c *Conversation, err error) {
	oid, err := bson.ObjectIDFromHex(cid)
	if err != nil {
		return nil, ErrNotFound
	}
	c = new(Conversation)
	if err = m.conn.FindOne(ctx, cacheKeyPrefix+cid, c, bson.M{cst.Id: oid}); err != nil {
		if errors.Is(err, monc.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListConversations 分页查询用户参与的对话, 最近活跃的在前
func (m *mongoMapper) ListConversations(ctx context.Context, uid string, page *basic.Page) (cs []*Conversation, hasMore bool, err error) {
	var total int64
	filter := bson.M{cst.Or: bson.A{bson.M{cst.User1Id: uid}, bson.M{cst.User2Id: uid}}}
	opts := util.BuildFindOption(page).SetSort(bson.D{{Key: cst.UpdateTime, Value: -1}, {Key: cst.Id, Value: -1}})
	if err = m.conn.Find(ctx, &cs, filter, opts); err != nil {
		logs.CtxErrorf(ctx, "[mapper] [conversation] [ListConversations] find err:%s", errorx.ErrorWithoutStack(err))
		return nil, false, err
	}
	if total, err = m.conn.CountDocuments(ctx, filter); err != nil {
		return nil, false, err
	}
	return cs, util.HasMore(total, page), nil
}

// Touch 推进对话的最近活跃时间, 不会回退
func (m *mongoMapper) Touch(ctx context.Context, cid string, at time.Time) (err error) {
	oid, err := bson.ObjectIDFromHex(cid)
	if err != nil {
		return ErrNotFound
	}
	_, err = m.conn.UpdateOne(ctx, cacheKeyPrefix+cid, bson.M{cst.Id: oid}, bson.M{cst.Max: bson.M{cst.UpdateTime: at}})
	return err
}
