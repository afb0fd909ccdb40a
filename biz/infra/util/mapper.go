package util

import (
	"github.com/xh-polaris/chat-relay/biz/application/dto/basic"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// BuildFindOption 根据分页参数构造查询选项
func BuildFindOption(p *basic.Page) (opts *options.FindOptionsBuilder) {
	opts = options.Find()
	page, size := p.GetPage(), p.GetSize()
	opts.SetSkip((page - 1) * size).SetLimit(size)
	return
}

func ObjectIDsFromHex(ids ...string) ([]bson.ObjectID, error) {
	var objectIDs []bson.ObjectID
	for _, id := range ids {
		oid, err := bson.ObjectIDFromHex(id)
		if err != nil {
			return nil, err
		}
		objectIDs = append(objectIDs, oid)
	}
	return objectIDs, nil
}

func HasMore(total int64, page *basic.Page) bool {
	return total > page.GetPage()*page.GetSize()
}
