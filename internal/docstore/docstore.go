// Package docstore 把 Redis 封装成一个按 collection/id 寻址的文档存储，
// 只暴露外部协作方约定的原语：文档 get/set/delete、集合字段 union/remove、
// 追加序列、排序索引范围查询和唯一键反查。不暴露任何事务语义。
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound 目标文档不存在
var ErrNotFound = errors.New("docstore: document not found")

// Store 键空间布局：
//
//	doc:<col>:<id>          JSON 文档
//	doc:<col>:<id>:<field>  集合/序列字段（原生 SET / LIST）
//	idx:<col>:<name>        排序索引（ZSET，score 为排序字段）
//	lk:<col>:<name>         唯一键反查（HASH）
type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

// 集合/序列字段的写入要求文档本体存在，检查与写入在脚本内原子完成
var (
	guardedSAdd = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
return redis.call('SADD', KEYS[2], ARGV[1])`)

	guardedSRem = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
return redis.call('SREM', KEYS[2], ARGV[1])`)

	guardedRPush = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
return redis.call('RPUSH', KEYS[2], ARGV[1])`)
)

func docKey(col, id string) string          { return fmt.Sprintf("doc:%s:%s", col, id) }
func fieldKey(col, id, field string) string { return fmt.Sprintf("doc:%s:%s:%s", col, id, field) }
func indexKey(col, name string) string      { return fmt.Sprintf("idx:%s:%s", col, name) }
func lookupKey(col, name string) string     { return fmt.Sprintf("lk:%s:%s", col, name) }

// Get 读取文档并反序列化到 out
func (s *Store) Get(ctx context.Context, col, id string, out any) error {
	raw, err := s.rdb.Get(ctx, docKey(col, id)).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Set 整文档覆盖写（last-writer-wins，调用方自行 read-modify-write）
func (s *Store) Set(ctx context.Context, col, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, docKey(col, id), raw, 0).Err()
}

// Exists 文档本体是否存在
func (s *Store) Exists(ctx context.Context, col, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, docKey(col, id)).Result()
	return n > 0, err
}

// Delete 删除文档本体及其附属字段键
func (s *Store) Delete(ctx context.Context, col, id string, fields ...string) error {
	keys := make([]string, 0, len(fields)+1)
	keys = append(keys, docKey(col, id))
	for _, f := range fields {
		keys = append(keys, fieldKey(col, id, f))
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// SetAdd 集合字段幂等并集，返回是否真正写入
func (s *Store) SetAdd(ctx context.Context, col, id, field, member string) (bool, error) {
	n, err := guardedSAdd.Run(ctx, s.rdb, []string{docKey(col, id), fieldKey(col, id, field)}, member).Int64()
	if err != nil {
		return false, err
	}
	if n < 0 {
		return false, ErrNotFound
	}
	return n > 0, nil
}

// SetRemove 集合字段幂等移除，返回是否真正移除
func (s *Store) SetRemove(ctx context.Context, col, id, field, member string) (bool, error) {
	n, err := guardedSRem.Run(ctx, s.rdb, []string{docKey(col, id), fieldKey(col, id, field)}, member).Int64()
	if err != nil {
		return false, err
	}
	if n < 0 {
		return false, ErrNotFound
	}
	return n > 0, nil
}

func (s *Store) SetMembers(ctx context.Context, col, id, field string) ([]string, error) {
	return s.rdb.SMembers(ctx, fieldKey(col, id, field)).Result()
}

func (s *Store) SetCard(ctx context.Context, col, id, field string) (int64, error) {
	return s.rdb.SCard(ctx, fieldKey(col, id, field)).Result()
}

func (s *Store) SetContains(ctx context.Context, col, id, field, member string) (bool, error) {
	return s.rdb.SIsMember(ctx, fieldKey(col, id, field), member).Result()
}

// ListAppend 追加序列元素（JSON 编码），仅追加、不去重
func (s *Store) ListAppend(ctx context.Context, col, id, field string, elem any) error {
	raw, err := json.Marshal(elem)
	if err != nil {
		return err
	}
	n, err := guardedRPush.Run(ctx, s.rdb, []string{docKey(col, id), fieldKey(col, id, field)}, raw).Int64()
	if err != nil {
		return err
	}
	if n < 0 {
		return ErrNotFound
	}
	return nil
}

// ListRange 按插入顺序读取整个序列的原始 JSON 元素
func (s *Store) ListRange(ctx context.Context, col, id, field string) ([]string, error) {
	return s.rdb.LRange(ctx, fieldKey(col, id, field), 0, -1).Result()
}

// IndexPut 维护排序索引项
func (s *Store) IndexPut(ctx context.Context, col, name string, score int64, member string) error {
	return s.rdb.ZAdd(ctx, indexKey(col, name), redis.Z{Score: float64(score), Member: member}).Err()
}

func (s *Store) IndexRemove(ctx context.Context, col, name, member string) error {
	return s.rdb.ZRem(ctx, indexKey(col, name), member).Err()
}

// IndexRevRange 按 score 降序返回 [start, stop] 区间的成员
func (s *Store) IndexRevRange(ctx context.Context, col, name string, start, stop int64) ([]string, error) {
	return s.rdb.ZRevRange(ctx, indexKey(col, name), start, stop).Result()
}

// LookupPut 维护唯一键到文档 id 的反查表
func (s *Store) LookupPut(ctx context.Context, col, name, key, id string) error {
	return s.rdb.HSet(ctx, lookupKey(col, name), key, id).Err()
}

// LookupPutIfAbsent 仅当键尚未被占用时建立反查项，返回是否写入
func (s *Store) LookupPutIfAbsent(ctx context.Context, col, name, key, id string) (bool, error) {
	return s.rdb.HSetNX(ctx, lookupKey(col, name), key, id).Result()
}

func (s *Store) LookupGet(ctx context.Context, col, name, key string) (string, error) {
	id, err := s.rdb.HGet(ctx, lookupKey(col, name), key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	return id, err
}

func (s *Store) LookupRemove(ctx context.Context, col, name, key string) error {
	return s.rdb.HDel(ctx, lookupKey(col, name), key).Err()
}
