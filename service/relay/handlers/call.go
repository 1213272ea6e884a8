package handlers

import (
	"PPRelay/logger"
	"PPRelay/service/relay"
	"PPRelay/tools/decode"
)

// 通话信令纯转发：offer/answer/candidate 对网关不透明，网关只负责
// 把 from 换成发送方的 conn_id 让对端能回话。目标连接不存在时静默丢弃。

type CallOfferHandler struct{}

func NewCallOfferHandler() relay.Handler { return &CallOfferHandler{} }
func (h *CallOfferHandler) Event() string { return relay.EvtCallOffer }
func (h *CallOfferHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	m, err := f.DataMap()
	if err != nil {
		return nil
	}
	p, err := decode.DecodeMap[relay.CallOfferPayload](m)
	if err != nil || p.To == "" {
		return nil
	}
	if serr := ctx.S.SendToConn(p.To, relay.EvtCallOffer, map[string]any{
		"offer":    p.Offer,
		"from":     c.ConnID,
		"fromUser": p.From,
	}); serr != nil {
		logger.Debugf("[Call] offer target missing to=%s: %v", p.To, serr)
	}
	return nil
}

type CallAnswerHandler struct{}

func NewCallAnswerHandler() relay.Handler { return &CallAnswerHandler{} }
func (h *CallAnswerHandler) Event() string { return relay.EvtCallAnswer }
func (h *CallAnswerHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	m, err := f.DataMap()
	if err != nil {
		return nil
	}
	p, err := decode.DecodeMap[relay.CallAnswerPayload](m)
	if err != nil || p.To == "" {
		return nil
	}
	if serr := ctx.S.SendToConn(p.To, relay.EvtCallAnswer, map[string]any{
		"answer": p.Answer,
		"from":   c.ConnID,
	}); serr != nil {
		logger.Debugf("[Call] answer target missing to=%s: %v", p.To, serr)
	}
	return nil
}

type CallCandidateHandler struct{}

func NewCallCandidateHandler() relay.Handler { return &CallCandidateHandler{} }
func (h *CallCandidateHandler) Event() string { return relay.EvtCallCandidate }
func (h *CallCandidateHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	m, err := f.DataMap()
	if err != nil {
		return nil
	}
	p, err := decode.DecodeMap[relay.CallCandidatePayload](m)
	if err != nil || p.To == "" {
		return nil
	}
	if serr := ctx.S.SendToConn(p.To, relay.EvtCallCandidate, map[string]any{
		"candidate": p.Candidate,
		"from":      c.ConnID,
	}); serr != nil {
		logger.Debugf("[Call] candidate target missing to=%s: %v", p.To, serr)
	}
	return nil
}

type CallEndHandler struct{}

func NewCallEndHandler() relay.Handler { return &CallEndHandler{} }
func (h *CallEndHandler) Event() string { return relay.EvtCallEnd }
func (h *CallEndHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	m, err := f.DataMap()
	if err != nil {
		return nil
	}
	p, err := decode.DecodeMap[relay.CallEndPayload](m)
	if err != nil || p.To == "" {
		return nil
	}
	if serr := ctx.S.SendToConn(p.To, relay.EvtCallEnd, map[string]any{
		"from": c.ConnID,
	}); serr != nil {
		logger.Debugf("[Call] end target missing to=%s: %v", p.To, serr)
	}
	return nil
}
