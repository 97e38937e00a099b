// Package service 单条招聘链接的抓取入口
//
// 对外只暴露 {url, platform} -> {success, job | message},不依赖任何HTTP框架
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/RecoveryAshes/kjobcrawl/internal/core"
	"github.com/RecoveryAshes/kjobcrawl/internal/crawlers"
	"github.com/RecoveryAshes/kjobcrawl/internal/models"
	"github.com/RecoveryAshes/kjobcrawl/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// 返回给调用方的提示
const (
	MsgDuplicate   = "이미 등록된 채용 공고입니다"
	MsgUnsupported = "지원하지 않는 사이트입니다"
	MsgNotFound    = "채용 공고를 찾을 수 없습니다"
	MsgServerError = "서버 오류가 발생했습니다"
	MsgMismatch    = "플랫폼과 URL이 일치하지 않습니다"
	MsgCreated     = "채용 공고가 등록되었습니다"
)

// CrawlRequest 抓取请求, Platform 为空时按URL识别
type CrawlRequest struct {
	URL      string `json:"url" validate:"required,url,startswith=http"`
	Platform string `json:"platform" validate:"omitempty,oneof=saramin jobplanet incruit wanted linkedin"`
}

// CrawlResponse 抓取结果
type CrawlResponse struct {
	Success bool                `json:"success"`
	Job     *store.StoredRecord `json:"job,omitempty"`
	Message string              `json:"message,omitempty"`
}

// JobStore 服务依赖的存储操作, *store.DB 实现了它
type JobStore interface {
	FindByURL(ctx context.Context, url string) (store.StoredRecord, bool, error)
	Save(ctx context.Context, rec *models.JobRecord) (store.StoredRecord, bool, error)
}

// Service 抓取服务
type Service struct {
	dispatcher *core.Dispatcher
	store      JobStore
	validate   *validator.Validate
	logger     zerolog.Logger
}

// New 创建服务, st 为nil时不做重复检查也不保存
func New(d *core.Dispatcher, st JobStore, logger zerolog.Logger) *Service {
	return &Service{
		dispatcher: d,
		store:      st,
		validate:   validator.New(),
		logger:     logger.With().Str("component", "service").Logger(),
	}
}

// Crawl 抓取单条招聘详情
// 已保存的URL直接返回已有记录,不会再次抓取
func (s *Service) Crawl(ctx context.Context, req CrawlRequest) (resp CrawlResponse) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("url", req.URL).
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("抓取请求异常")
			resp = failure(MsgServerError)
		}
	}()

	req.URL = strings.TrimSpace(req.URL)
	req.Platform = strings.ToLower(strings.TrimSpace(req.Platform))
	if err := s.validate.Struct(req); err != nil {
		return failure(validationMessage(err))
	}

	if s.store != nil {
		existing, found, err := s.store.FindByURL(ctx, req.URL)
		if err != nil {
			s.logger.Error().Err(err).Str("url", req.URL).Msg("查询已有记录失败")
			return failure(MsgServerError)
		}
		if found {
			return CrawlResponse{Success: true, Job: &existing, Message: MsgDuplicate}
		}
	}

	scraper, err := s.dispatcher.Scraper(req.URL)
	if err != nil {
		return failure(MsgUnsupported)
	}
	if req.Platform != "" && models.SiteID(req.Platform) != scraper.Site() {
		s.logger.Warn().Str("url", req.URL).Str("platform", req.Platform).Str("site", string(scraper.Site())).Msg("平台与URL不一致")
		return failure(MsgMismatch)
	}

	rec, err := scraper.CrawlJobDetail(ctx, req.URL)
	if err != nil || rec == nil {
		if err == nil || isNotFound(err) {
			s.logger.Warn().Err(err).Str("url", req.URL).Msg("未抓取到招聘信息")
			return failure(MsgNotFound)
		}
		s.logger.Error().Err(err).Str("url", req.URL).Msg("抓取失败")
		return failure(MsgServerError)
	}

	if s.store == nil {
		return CrawlResponse{Success: true, Job: &store.StoredRecord{Job: rec}, Message: MsgCreated}
	}
	stored, created, err := s.store.Save(ctx, rec)
	if err != nil {
		s.logger.Error().Err(err).Str("url", req.URL).Msg("保存记录失败")
		return failure(MsgServerError)
	}
	if !created {
		return CrawlResponse{Success: true, Job: &stored, Message: MsgDuplicate}
	}
	s.logger.Info().Str("url", req.URL).Int64("id", stored.ID).Str("site", string(rec.Site)).Msg("招聘信息已保存")
	return CrawlResponse{Success: true, Job: &stored, Message: MsgCreated}
}

// isNotFound 页面不存在或多次重试后仍无法获取
func isNotFound(err error) bool {
	if errors.Is(err, models.ErrPostingNotFound) || errors.Is(err, crawlers.ErrMaxRetriesReached) {
		return true
	}
	var fe *models.FetchError
	return errors.As(err, &fe) && !fe.Retryable()
}

func failure(msg string) CrawlResponse {
	return CrawlResponse{Success: false, Message: msg}
}

// validationMessage 只报告第一个字段错误
func validationMessage(err error) string {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		switch ve.Field() {
		case "URL":
			return "유효하지 않은 URL입니다"
		case "Platform":
			return MsgUnsupported
		}
		return fmt.Sprintf("잘못된 요청입니다: %s - %s", ve.Field(), ve.Tag())
	}
	return "잘못된 요청입니다"
}
