package service

import (
	"Agora/internal/model"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
)

type voteKey struct{ userID, postID uint64 }
type likeKey struct{ userID, postID uint64 }
type commentLikeKey struct{ userID, commentID uint64 }

func duplicateKeyErr() error {
	return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
}

// fakePostRepo 内存帖子仓储，计数语义与 SQL 实现一致（递减在 0 截断）
type fakePostRepo struct {
	mu     sync.Mutex
	nextID uint64
	posts  map[uint64]*model.Post
	status map[uint64]int8
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		nextID: 1,
		posts:  make(map[uint64]*model.Post),
		status: make(map[uint64]int8),
	}
}

func (f *fakePostRepo) seed(post *model.Post) *model.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post.ID == 0 {
		post.ID = f.nextID
		f.nextID++
	}
	f.posts[post.ID] = post
	return post
}

func (f *fakePostRepo) CreatePost(_ context.Context, post *model.Post) error {
	f.seed(post)
	return nil
}

func (f *fakePostRepo) GetPost(_ context.Context, id uint64) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok || post.IsDeleted {
		return nil, nil
	}
	cp := *post
	return &cp, nil
}

func (f *fakePostRepo) GetPostByIds(_ context.Context, ids []uint64) ([]*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Post, 0, len(ids))
	for _, id := range ids {
		if post, ok := f.posts[id]; ok && !post.IsDeleted {
			cp := *post
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePostRepo) ListPosts(_ context.Context, limit, offset int) ([]*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]*model.Post, 0, len(f.posts))
	for _, post := range f.posts {
		if !post.IsDeleted {
			cp := *post
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakePostRepo) UpdatePost(_ context.Context, post *model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.posts[post.ID]
	if !ok {
		return nil
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.ImageURL = post.ImageURL
	return nil
}

func (f *fakePostRepo) DeletePost(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post, ok := f.posts[id]; ok {
		post.IsDeleted = true
	}
	return nil
}

func (f *fakePostRepo) UpdatePostStatus(_ context.Context, id uint64, status int8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[id] = status
	if post, ok := f.posts[id]; ok {
		post.Status = status
	}
	return nil
}

func (f *fakePostRepo) AdjustVoteCounters(_ context.Context, postID uint64, upDelta, downDelta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[postID]
	if !ok {
		return nil
	}
	post.Upvotes = clampAdd(post.Upvotes, upDelta)
	post.Downvotes = clampAdd(post.Downvotes, downDelta)
	return nil
}

func (f *fakePostRepo) IncrLikes(_ context.Context, postID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post, ok := f.posts[postID]; ok {
		post.Likes++
	}
	return nil
}

func (f *fakePostRepo) IncrViews(_ context.Context, postID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post, ok := f.posts[postID]; ok {
		post.Views++
	}
	return nil
}

func (f *fakePostRepo) SyncCounters(_ context.Context, postID uint64, upvotes, downvotes, likes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post, ok := f.posts[postID]; ok {
		post.Upvotes = int(upvotes)
		post.Downvotes = int(downvotes)
		post.Likes = int(likes)
	}
	return nil
}

func clampAdd(v, delta int) int {
	v += delta
	if v < 0 {
		return 0
	}
	return v
}

// fakeCommentRepo 内存评论仓储，按创建时间升序返回平铺列表
type fakeCommentRepo struct {
	mu       sync.Mutex
	nextID   uint64
	comments map[uint64]*model.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{nextID: 1, comments: make(map[uint64]*model.Comment)}
}

func (f *fakeCommentRepo) seed(comment *model.Comment) *model.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if comment.ID == 0 {
		comment.ID = f.nextID
		f.nextID++
	} else if comment.ID >= f.nextID {
		f.nextID = comment.ID + 1
	}
	f.comments[comment.ID] = comment
	return comment
}

func (f *fakeCommentRepo) CreateComment(_ context.Context, comment *model.Comment) error {
	f.seed(comment)
	return nil
}

func (f *fakeCommentRepo) GetCommentByID(_ context.Context, commentID uint64) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment, ok := f.comments[commentID]
	if !ok || comment.IsDeleted {
		return nil, nil
	}
	cp := *comment
	return &cp, nil
}

func (f *fakeCommentRepo) GetCommentsByPostID(_ context.Context, postID uint64) ([]*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Comment, 0)
	for _, comment := range f.comments {
		if comment.PostID == postID && !comment.IsDeleted {
			cp := *comment
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCommentRepo) DeleteComment(_ context.Context, commentID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if comment, ok := f.comments[commentID]; ok {
		comment.IsDeleted = true
	}
	return nil
}

func (f *fakeCommentRepo) AdjustLikes(_ context.Context, commentID uint64, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if comment, ok := f.comments[commentID]; ok {
		comment.Likes = clampAdd(comment.Likes, delta)
	}
	return nil
}

func (f *fakeCommentRepo) SyncLikes(_ context.Context, commentID uint64, likes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if comment, ok := f.comments[commentID]; ok {
		comment.Likes = int(likes)
	}
	return nil
}

// fakeActionRepo 内存交互仓储，唯一键冲突返回 1062 错误
type fakeActionRepo struct {
	mu           sync.Mutex
	votes        map[voteKey]*model.Vote
	likes        map[likeKey]struct{}
	bookmarks    map[likeKey]struct{}
	bookmarkSeq  []likeKey
	commentLikes map[commentLikeKey]struct{}
	reports      []*model.Report
	commentRepo  *fakeCommentRepo
}

func newFakeActionRepo(commentRepo *fakeCommentRepo) *fakeActionRepo {
	return &fakeActionRepo{
		votes:        make(map[voteKey]*model.Vote),
		likes:        make(map[likeKey]struct{}),
		bookmarks:    make(map[likeKey]struct{}),
		commentLikes: make(map[commentLikeKey]struct{}),
		commentRepo:  commentRepo,
	}
}

func (f *fakeActionRepo) GetVote(_ context.Context, userID, postID uint64) (*model.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vote, ok := f.votes[voteKey{userID, postID}]
	if !ok {
		return nil, nil
	}
	cp := *vote
	return &cp, nil
}

func (f *fakeActionRepo) CreateVote(_ context.Context, vote *model.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := voteKey{vote.UserID, vote.PostID}
	if _, ok := f.votes[key]; ok {
		return duplicateKeyErr()
	}
	cp := *vote
	f.votes[key] = &cp
	return nil
}

func (f *fakeActionRepo) UpdateVoteType(_ context.Context, userID, postID uint64, voteType int8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if vote, ok := f.votes[voteKey{userID, postID}]; ok {
		vote.VoteType = voteType
	}
	return nil
}

func (f *fakeActionRepo) DeleteVote(_ context.Context, userID, postID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.votes, voteKey{userID, postID})
	return nil
}

func (f *fakeActionRepo) CountVotes(_ context.Context, postID uint64, voteType int8) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for key, vote := range f.votes {
		if key.postID == postID && vote.VoteType == voteType {
			n++
		}
	}
	return n, nil
}

func (f *fakeActionRepo) CreateLike(_ context.Context, like *model.Like) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := likeKey{like.UserID, like.PostID}
	if _, ok := f.likes[key]; ok {
		return duplicateKeyErr()
	}
	f.likes[key] = struct{}{}
	return nil
}

func (f *fakeActionRepo) CheckLikeExists(_ context.Context, userID, postID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.likes[likeKey{userID, postID}]
	return ok, nil
}

func (f *fakeActionRepo) CountLikes(_ context.Context, postID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for key := range f.likes {
		if key.postID == postID {
			n++
		}
	}
	return n, nil
}

func (f *fakeActionRepo) CreateBookmark(_ context.Context, bookmark *model.Bookmark) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := likeKey{bookmark.UserID, bookmark.PostID}
	if _, ok := f.bookmarks[key]; ok {
		return duplicateKeyErr()
	}
	f.bookmarks[key] = struct{}{}
	f.bookmarkSeq = append(f.bookmarkSeq, key)
	return nil
}

func (f *fakeActionRepo) DeleteBookmark(_ context.Context, userID, postID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bookmarks, likeKey{userID, postID})
	return nil
}

func (f *fakeActionRepo) CheckBookmarkExists(_ context.Context, userID, postID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.bookmarks[likeKey{userID, postID}]
	return ok, nil
}

func (f *fakeActionRepo) GetBookmarkedPostIDs(_ context.Context, userID uint64, limit, offset int) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]uint64, 0)
	// 收藏时间倒序
	for i := len(f.bookmarkSeq) - 1; i >= 0; i-- {
		key := f.bookmarkSeq[i]
		if key.userID != userID {
			continue
		}
		if _, ok := f.bookmarks[key]; !ok {
			continue
		}
		ids = append(ids, key.postID)
	}
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakeActionRepo) CreateCommentLike(_ context.Context, cl *model.CommentLike) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := commentLikeKey{cl.UserID, cl.CommentID}
	if _, ok := f.commentLikes[key]; ok {
		return duplicateKeyErr()
	}
	f.commentLikes[key] = struct{}{}
	return nil
}

func (f *fakeActionRepo) DeleteCommentLike(_ context.Context, userID, commentID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := commentLikeKey{userID, commentID}
	if _, ok := f.commentLikes[key]; !ok {
		return 0, nil
	}
	delete(f.commentLikes, key)
	return 1, nil
}

func (f *fakeActionRepo) CheckCommentLikeExists(_ context.Context, userID, commentID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.commentLikes[commentLikeKey{userID, commentID}]
	return ok, nil
}

func (f *fakeActionRepo) CountCommentLikes(_ context.Context, commentID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for key := range f.commentLikes {
		if key.commentID == commentID {
			n++
		}
	}
	return n, nil
}

func (f *fakeActionRepo) GetLikedCommentIDs(_ context.Context, userID uint64, commentIDs []uint64) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint64, 0)
	for _, cid := range commentIDs {
		if _, ok := f.commentLikes[commentLikeKey{userID, cid}]; ok {
			out = append(out, cid)
		}
	}
	return out, nil
}

func (f *fakeActionRepo) CreateReport(_ context.Context, report *model.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeActionRepo) CountCommentsByPostID(_ context.Context, postID uint64) (int64, error) {
	if f.commentRepo == nil {
		return 0, nil
	}
	comments, _ := f.commentRepo.GetCommentsByPostID(context.Background(), postID)
	return int64(len(comments)), nil
}

var errCacheMiss = errors.New("缓存未命中")

// fakeActionCache 内存版 ActionCache，记录每个键的过期时间以便断言
type fakeActionCache struct {
	mu    sync.Mutex
	locks map[string]string
	ints  map[string]int64
	ttls  map[string]time.Duration
}

func newFakeActionCache() *fakeActionCache {
	return &fakeActionCache{
		locks: make(map[string]string),
		ints:  make(map[string]int64),
		ttls:  make(map[string]time.Duration),
	}
}

func (f *fakeActionCache) TryLock(_ context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.locks[key]; ok {
		return false, nil
	}
	f.locks[key] = fmt.Sprintf("%v", value)
	f.ttls[key] = expiration
	return true, nil
}

func (f *fakeActionCache) UnLock(_ context.Context, key string, value interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locks[key] == fmt.Sprintf("%v", value) {
		delete(f.locks, key)
	}
}

func (f *fakeActionCache) Incr(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ints[key]++
	return nil
}

func (f *fakeActionCache) GetInt64(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.ints[key]
	if !ok {
		return 0, errCacheMiss
	}
	return value, nil
}

func (f *fakeActionCache) SetWithExpiration(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case int64:
		f.ints[key] = v
	case int:
		f.ints[key] = int64(v)
	}
	f.ttls[key] = expiration
	return nil
}

func (f *fakeActionCache) ttlOf(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ttls[key]
}

// fakeUserRepo 记录懒创建的用户快照
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint64]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint64]string)}
}

func (f *fakeUserRepo) GetUser(_ context.Context, id uint64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	username, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &model.User{ID: id, Username: username}, nil
}

func (f *fakeUserRepo) EnsureUser(_ context.Context, id uint64, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = username
	return nil
}
