package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/pkg/minio"
	"Agora/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/jinzhu/copier"
)

type PostService interface {
	CreatePost(ctx context.Context, userID uint64, username string, req *dto.PostCreateDTO) (*dto.PostDTO, error)
	UpdatePost(ctx context.Context, userID, postID uint64, req *dto.PostUpdateDTO) (*dto.PostDTO, error)
	DeletePost(ctx context.Context, userID, postID uint64) error

	// GetPostDetail 返回详情并异步记一次浏览，展示值为预增后的数字
	GetPostDetail(ctx context.Context, postID, currentUserID uint64) (*dto.PostDetailDTO, error)
	ListPosts(ctx context.Context, page, pageSize int) (*dto.PostListDTO, error)
	GetBookmarkedPosts(ctx context.Context, userID uint64, page, pageSize int) (*dto.PostListDTO, error)
}

type postServiceImpl struct {
	postRepo   repository.PostRepo
	actionRepo repository.PostActionRepo
	userRepo   repository.UserRepo
}

func NewPostService(postRepo repository.PostRepo, actionRepo repository.PostActionRepo, userRepo repository.UserRepo) PostService {
	return &postServiceImpl{postRepo: postRepo, actionRepo: actionRepo, userRepo: userRepo}
}

func (s *postServiceImpl) CreatePost(ctx context.Context, userID uint64, username string, req *dto.PostCreateDTO) (*dto.PostDTO, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	if err := s.userRepo.EnsureUser(ctx, userID, username); err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.postRepo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return s.toPostDTO(post), nil
}

func (s *postServiceImpl) UpdatePost(ctx context.Context, userID, postID uint64, req *dto.PostUpdateDTO) (*dto.PostDTO, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != userID {
		return nil, UnauthorizedError
	}

	oldImage := post.ImageURL
	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if req.ClearImage {
		post.ImageURL = ""
	} else if req.ImageURL != "" {
		post.ImageURL = req.ImageURL
	}

	if err = s.postRepo.UpdatePost(ctx, post); err != nil {
		return nil, err
	}

	// 换图后旧图尽力清理，失败不影响编辑结果
	if oldImage != "" && oldImage != post.ImageURL {
		if derr := minio.DeleteFileByURL(ctx, oldImage); derr != nil {
			log.WarnContext(ctx, "delete stale post image failed", "url", oldImage, "err", derr)
		}
	}
	return s.toPostDTO(post), nil
}

func (s *postServiceImpl) DeletePost(ctx context.Context, userID, postID uint64) error {
	if userID == 0 {
		return ErrLoginRequired
	}
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != userID {
		return UnauthorizedError
	}

	if err = s.postRepo.DeletePost(ctx, postID); err != nil {
		return err
	}
	if post.ImageURL != "" {
		if derr := minio.DeleteFileByURL(ctx, post.ImageURL); derr != nil {
			log.WarnContext(ctx, "delete post image failed", "url", post.ImageURL, "err", derr)
		}
	}
	return nil
}

func (s *postServiceImpl) GetPostDetail(ctx context.Context, postID, currentUserID uint64) (*dto.PostDetailDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	// 浏览计数写库不阻塞读路径
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if verr := s.postRepo.IncrViews(bgCtx, postID); verr != nil {
			log.Error("view counter sync failed", "postID", postID, "err", verr)
		}
	}()

	detail := &dto.PostDetailDTO{PostDTO: *s.toPostDTO(post)}
	detail.Views = post.Views + 1

	if currentUserID != 0 {
		if vote, verr := s.actionRepo.GetVote(ctx, currentUserID, postID); verr == nil && vote != nil {
			detail.VoteStatus = vote.VoteType
		}
		if saved, serr := s.actionRepo.CheckBookmarkExists(ctx, currentUserID, postID); serr == nil {
			detail.IsSaved = saved
		}
		if liked, lerr := s.actionRepo.CheckLikeExists(ctx, currentUserID, postID); lerr == nil {
			detail.IsLiked = liked
		}
	}
	return detail, nil
}

func (s *postServiceImpl) ListPosts(ctx context.Context, page, pageSize int) (*dto.PostListDTO, error) {
	page, pageSize = normalizePage(page, pageSize)

	// 多取一条探测是否还有下一页
	posts, err := s.postRepo.ListPosts(ctx, pageSize+1, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return s.toPostListDTO(posts, pageSize), nil
}

func (s *postServiceImpl) GetBookmarkedPosts(ctx context.Context, userID uint64, page, pageSize int) (*dto.PostListDTO, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	page, pageSize = normalizePage(page, pageSize)

	ids, err := s.actionRepo.GetBookmarkedPostIDs(ctx, userID, pageSize+1, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return &dto.PostListDTO{List: []*dto.PostDTO{}}, nil
	}

	posts, err := s.postRepo.GetPostByIds(ctx, ids)
	if err != nil {
		return nil, err
	}

	// 收藏页保持收藏时间倒序，批量查回来后按 id 顺序重排
	byID := make(map[uint64]*model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*model.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return s.toPostListDTO(ordered, pageSize), nil
}

func (s *postServiceImpl) toPostListDTO(posts []*model.Post, pageSize int) *dto.PostListDTO {
	hasMore := len(posts) > pageSize
	if hasMore {
		posts = posts[:pageSize]
	}
	list := make([]*dto.PostDTO, 0, len(posts))
	for _, p := range posts {
		list = append(list, s.toPostDTO(p))
	}
	return &dto.PostListDTO{List: list, HasMore: hasMore}
}

func (s *postServiceImpl) toPostDTO(p *model.Post) *dto.PostDTO {
	d := &dto.PostDTO{}
	if err := copier.Copy(d, p); err != nil {
		log.Error("copy post model failed", "err", err)
	}
	d.CreatedAt = p.CreatedAt.Format("2006-01-02 15:04:05")
	d.UpdatedAt = p.UpdatedAt.Format("2006-01-02 15:04:05")
	if p.User.ID != 0 {
		d.Username = p.User.Username
		d.AvatarURL = p.User.AvatarURL
	}
	return d
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 10
	}
	return page, pageSize
}
