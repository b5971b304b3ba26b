package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/swapper"
)

type chainsResponse struct {
	Chains []chain.Chain `json:"chains"`
}

type providersResponse struct {
	Providers []swapper.ProviderType `json:"providers"`
}

type quotesResponse struct {
	Quotes []swapper.SwapQuote `json:"quotes"`
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) bindQuoteRequest(c echo.Context) (swapper.QuoteRequest, error) {
	var req swapper.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return swapper.QuoteRequest{}, err
	}
	if req.Options.Fee == nil && s.defaultFee != nil {
		fees := *s.defaultFee
		req.Options.Fee = &fees
	}
	return req, nil
}

func (s *Server) quote(c echo.Context) error {
	req, err := s.bindQuoteRequest(c)
	if err != nil {
		return err
	}
	quote, err := s.swapper.GetQuote(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quote)
}

func (s *Server) quotes(c echo.Context) error {
	req, err := s.bindQuoteRequest(c)
	if err != nil {
		return err
	}
	quotes, err := s.swapper.GetQuotes(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quotesResponse{Quotes: quotes})
}

func (s *Server) quoteByProvider(c echo.Context) error {
	req, err := s.bindQuoteRequest(c)
	if err != nil {
		return err
	}
	id := swapper.ProviderID(c.Param("provider"))
	quote, err := s.swapper.GetQuoteByProvider(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quote)
}

func (s *Server) quoteData(c echo.Context) error {
	var quote swapper.SwapQuote
	if err := c.Bind(&quote); err != nil {
		return err
	}
	data, err := s.swapper.BuildTransaction(c.Request().Context(), quote)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

// chains lists every supported chain, or the destinations reachable from
// the asset query parameter.
func (s *Server) chains(c echo.Context) error {
	raw := c.QueryParam("asset")
	if raw == "" {
		return c.JSON(http.StatusOK, chainsResponse{Chains: s.swapper.SupportedChains()})
	}
	asset, err := chain.ParseAssetID(raw)
	if err != nil {
		return swapper.WrapError(swapper.KindNotSupportedChain, err, "invalid asset")
	}
	return c.JSON(http.StatusOK, chainsResponse{Chains: s.swapper.SupportedChainsForAsset(asset)})
}

func (s *Server) providers(c echo.Context) error {
	return c.JSON(http.StatusOK, providersResponse{Providers: s.swapper.Providers()})
}

func (s *Server) status(c echo.Context) error {
	ch, err := chain.FromString(c.Param("chain"))
	if err != nil {
		return swapper.WrapError(swapper.KindNotSupportedChain, err, "invalid chain")
	}
	id := swapper.ProviderID(c.Param("provider"))
	res, err := s.swapper.GetSwapResult(c.Request().Context(), id, ch, c.Param("hash"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
