package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ashenafi-pixel/guaguale/game"
	"github.com/Ashenafi-pixel/guaguale/prizepool"
)

type prizesBody struct {
	Prizes []prizepool.Prize `json:"prizes"`
}

type filterBody struct {
	UnrevealedOnly bool `json:"unrevealedOnly"`
}

// pointerBody is one pointer event in card-local coordinates. Width and Height,
// when set, are the size the card is drawn at.
type pointerBody struct {
	Type   string  `json:"type" binding:"required,oneof=down move up leave cancel"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type pointerResponse struct {
	CardID    int       `json:"cardId"`
	Revealed  bool      `json:"revealed"`
	PrizeName string    `json:"prizeName,omitempty"`
	View      game.View `json:"view"`
}

// withSession runs fn on the session named by :id and maps its error.
func (s *Server) withSession(c *gin.Context, fn func(*game.Session) error) bool {
	if err := s.registry.With(c.Request.Context(), c.Param("id"), fn); err != nil {
		writeGameError(c, err)
		return false
	}
	return true
}

func (s *Server) createSession(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"sessionId": s.registry.Create()})
}

func (s *Server) getSession(c *gin.Context) {
	var v game.View
	if s.withSession(c, func(gs *game.Session) error {
		v = gs.View()
		return nil
	}) {
		c.JSON(http.StatusOK, v)
	}
}

func (s *Server) getPrizes(c *gin.Context) {
	var list []prizepool.Prize
	if s.withSession(c, func(gs *game.Session) error {
		list = gs.Prizes(c.Request.Context())
		return nil
	}) {
		c.JSON(http.StatusOK, prizesBody{Prizes: list})
	}
}

func (s *Server) putPrizes(c *gin.Context) {
	var body prizesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, err.Error(), "INVALID_BODY")
		return
	}
	var list []prizepool.Prize
	if s.withSession(c, func(gs *game.Session) error {
		if err := gs.SavePrizes(c.Request.Context(), body.Prizes); err != nil {
			return err
		}
		list = gs.Prizes(c.Request.Context())
		return nil
	}) {
		c.JSON(http.StatusOK, prizesBody{Prizes: list})
	}
}

// draw starts a new game from the posted prizes, or from the saved ones when none are posted.
func (s *Server) draw(c *gin.Context) {
	var body prizesBody
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			writeError(c, http.StatusBadRequest, err.Error(), "INVALID_BODY")
			return
		}
	}
	var v game.View
	if s.withSession(c, func(gs *game.Session) error {
		prizes := body.Prizes
		if len(prizes) == 0 {
			prizes = gs.Prizes(c.Request.Context())
		}
		if err := gs.Start(c.Request.Context(), prizes); err != nil {
			return err
		}
		v = gs.View()
		return nil
	}) {
		c.JSON(http.StatusOK, v)
	}
}

func (s *Server) reset(c *gin.Context) {
	s.mutate(c, func(gs *game.Session) error { return gs.Reset(c.Request.Context()) })
}

func (s *Server) shuffle(c *gin.Context) {
	s.mutate(c, func(gs *game.Session) error { return gs.Shuffle(c.Request.Context()) })
}

func (s *Server) setFilter(c *gin.Context) {
	var body filterBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, err.Error(), "INVALID_BODY")
		return
	}
	s.mutate(c, func(gs *game.Session) error { return gs.SetFilter(c.Request.Context(), body.UnrevealedOnly) })
}

// page applies optional perPage and page query values and returns the view.
func (s *Server) page(c *gin.Context) {
	perPage, okPer, err := queryInt(c, "perPage")
	if err != nil {
		writeError(c, http.StatusBadRequest, "perPage must be an integer", "INVALID_QUERY")
		return
	}
	page, okPage, err := queryInt(c, "page")
	if err != nil {
		writeError(c, http.StatusBadRequest, "page must be an integer", "INVALID_QUERY")
		return
	}
	s.mutate(c, func(gs *game.Session) error {
		if okPer {
			if err := gs.SetItemsPerPage(c.Request.Context(), perPage); err != nil {
				return err
			}
		}
		if okPage && gs.Active() {
			return gs.GoToPage(c.Request.Context(), page)
		}
		return nil
	})
}

func (s *Server) pointer(c *gin.Context) {
	cardID, err := strconv.Atoi(c.Param("cardId"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "cardId must be an integer", "INVALID_PATH")
		return
	}
	var body pointerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, err.Error(), "INVALID_BODY")
		return
	}
	resp := pointerResponse{CardID: cardID}
	if s.withSession(c, func(gs *game.Session) error {
		ctx := c.Request.Context()
		if body.Width > 0 && body.Height > 0 {
			if err := gs.SetSurfaceSize(cardID, body.Width, body.Height); err != nil {
				return err
			}
		}
		var err error
		switch body.Type {
		case "down":
			err = gs.PointerDown(ctx, cardID, body.X, body.Y)
		case "move":
			err = gs.PointerMove(ctx, cardID, body.X, body.Y)
		case "up":
			resp.Revealed, err = gs.PointerUp(ctx, cardID, body.X, body.Y)
		case "leave":
			resp.Revealed, err = gs.PointerLeave(ctx, cardID, body.X, body.Y)
		case "cancel":
			resp.Revealed, err = gs.PointerCancel(ctx, cardID)
		}
		if err != nil {
			return err
		}
		resp.View = gs.View()
		if resp.Revealed {
			resp.PrizeName = gs.PrizeOf(cardID)
		}
		return nil
	}) {
		c.JSON(http.StatusOK, resp)
	}
}

// mutate runs fn and responds with the resulting view.
func (s *Server) mutate(c *gin.Context, fn func(*game.Session) error) {
	var v game.View
	if s.withSession(c, func(gs *game.Session) error {
		if err := fn(gs); err != nil {
			return err
		}
		v = gs.View()
		return nil
	}) {
		c.JSON(http.StatusOK, v)
	}
}

func queryInt(c *gin.Context, key string) (int, bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}
