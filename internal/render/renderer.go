package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strconv"
	"strings"

	"github.com/park285/xo-kakao-bot/pkg/xodto"
	"golang.org/x/image/font"
)

// RenderOptions carries already-localized HUD text.
type RenderOptions struct {
	HUDHeader string
	HUDScore  string
	HUDTurn   string
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, view *xodto.SessionView, opts RenderOptions) ([]byte, error)
}

type pngBoardRenderer struct{}

func NewBoardRenderer() BoardRenderer { return &pngBoardRenderer{} }

const (
	cellSize      = 140
	boardCells    = 3
	boardSize     = cellSize * boardCells
	sideMargin    = 32
	topMargin     = 120
	bottomMargin  = 32
	gridLine      = 6
	markInset     = 14
	titleHeight   = 40
	turnHeight    = 32
	panelGap      = 12
	gapToBoard    = 18
	panelRadius   = 12
	panelPaddingX = 24
	scoreMinWidth = 96
	shadowOffsetY = 6
)

var (
	backgroundColor   = color.RGBA{245, 241, 232, 255}
	cellColor         = color.RGBA{255, 252, 245, 255}
	gridColor         = color.RGBA{60, 64, 82, 255}
	lastMoveFill      = color.NRGBA{R: 255, G: 228, B: 120, A: 120}
	winLineColor      = color.NRGBA{R: 40, G: 180, B: 99, A: 200}
	cellNumberColor   = color.NRGBA{R: 150, G: 150, B: 160, A: 160}
	hudPanelColor     = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnPanelColor = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudShadowColor    = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary    = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnTextColor  = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
)

func (r *pngBoardRenderer) RenderPNG(ctx context.Context, view *xodto.SessionView, opts RenderOptions) ([]byte, error) {
	if view == nil {
		return nil, fmt.Errorf("view is nil")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	totalWidth := boardSize + sideMargin*2
	totalHeight := boardSize + topMargin + bottomMargin
	origin := image.Point{X: sideMargin, Y: topMargin}
	boardRect := image.Rect(origin.X, origin.Y, origin.X+boardSize, origin.Y+boardSize)

	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawHUD(img, opts, boardRect)
	drawCells(img, view, origin)
	if err := drawMarks(img, view, origin); err != nil {
		return nil, err
	}
	drawGrid(img, boardRect)
	drawWinLine(img, view.WinLine, origin)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func cellRect(i int, origin image.Point) image.Rectangle {
	x := origin.X + (i%boardCells)*cellSize
	y := origin.Y + (i/boardCells)*cellSize
	return image.Rect(x, y, x+cellSize, y+cellSize)
}

func cellCenter(i int, origin image.Point) pointF {
	r := cellRect(i, origin)
	return pointF{X: float64(r.Min.X + cellSize/2), Y: float64(r.Min.Y + cellSize/2)}
}

func drawCells(img *image.RGBA, view *xodto.SessionView, origin image.Point) {
	face := LabelFace()
	drawer := &font.Drawer{Dst: img, Face: face}
	for i := range view.Cells {
		rect := cellRect(i, origin)
		imagedraw.Draw(img, rect, image.NewUniform(cellColor), image.Point{}, imagedraw.Src)
		if i == view.LastMove {
			imagedraw.Draw(img, rect, image.NewUniform(lastMoveFill), image.Point{}, imagedraw.Over)
		}
		if view.Cells[i] == "" {
			drawCenteredString(drawer, rect, strconv.Itoa(i+1), cellNumberColor)
		}
	}
}

// markFor maps a cell symbol to its shape. The shape follows the invitation
// pair so it stays with the player across swapped rounds.
func markFor(view *xodto.SessionView, sym string) Mark {
	pair := view.Symbols
	if pair[0] == "" || pair[1] == "" {
		pair = [2]string{view.Seats[0].Symbol, view.Seats[1].Symbol}
	}
	switch {
	case sym == "":
		return MarkNone
	case sym == pair[0]:
		return MarkX
	case sym == pair[1]:
		return MarkO
	}
	return MarkNone
}

func drawMarks(img *image.RGBA, view *xodto.SessionView, origin image.Point) error {
	size := cellSize - markInset*2
	for i, sym := range view.Cells {
		mark := markFor(view, sym)
		if mark == MarkNone {
			continue
		}
		markImg, err := renderMarkImage(mark, size)
		if err != nil {
			return err
		}
		rect := cellRect(i, origin).Inset(markInset)
		imagedraw.Draw(img, rect, markImg, image.Point{}, imagedraw.Over)
	}
	return nil
}

func drawGrid(img *image.RGBA, boardRect image.Rectangle) {
	fill := image.NewUniform(gridColor)
	for k := 1; k < boardCells; k++ {
		x := boardRect.Min.X + k*cellSize - gridLine/2
		imagedraw.Draw(img, image.Rect(x, boardRect.Min.Y, x+gridLine, boardRect.Max.Y), fill, image.Point{}, imagedraw.Src)
		y := boardRect.Min.Y + k*cellSize - gridLine/2
		imagedraw.Draw(img, image.Rect(boardRect.Min.X, y, boardRect.Max.X, y+gridLine), fill, image.Point{}, imagedraw.Src)
	}
}

func drawWinLine(img *image.RGBA, line []int, origin image.Point) {
	if len(line) != 3 {
		return
	}
	from, to := cellCenter(line[0], origin), cellCenter(line[2], origin)
	// extend a little past the outer cell centres
	dx, dy := (to.X-from.X)*0.18, (to.Y-from.Y)*0.18
	drawThickLine(img, pointF{from.X - dx, from.Y - dy}, pointF{to.X + dx, to.Y + dy}, 12, winLineColor)
}

func drawHUD(img *image.RGBA, opts RenderOptions, boardRect image.Rectangle) {
	face := CaptionFace()
	drawer := &font.Drawer{Dst: img, Face: face}

	title := strings.TrimSpace(opts.HUDHeader)
	if title == "" {
		title = "Tic-Tac-Toe"
	}
	score := strings.TrimSpace(opts.HUDScore)
	if score == "" {
		score = "0 : 0"
	}
	turn := strings.TrimSpace(opts.HUDTurn)

	turnBottom := boardRect.Min.Y - gapToBoard
	turnTop := turnBottom - turnHeight
	titleBottom := turnTop - panelGap
	titleTop := titleBottom - titleHeight

	scoreWidth := drawer.MeasureString(score).Round() + panelPaddingX*2
	if scoreWidth < scoreMinWidth {
		scoreWidth = scoreMinWidth
	}
	if limit := boardRect.Dx() / 2; scoreWidth > limit {
		scoreWidth = limit
		score = truncateWithEllipsis(face, score, scoreWidth-panelPaddingX*2)
	}
	titleWidth := boardRect.Dx() - scoreWidth - panelGap

	titleRect := image.Rect(boardRect.Min.X, titleTop, boardRect.Min.X+titleWidth, titleBottom)
	scoreRect := image.Rect(boardRect.Max.X-scoreWidth, titleTop, boardRect.Max.X, titleBottom)
	turnRect := image.Rect(boardRect.Min.X, turnTop, boardRect.Max.X, turnBottom)

	drawRoundedPanel(img, titleRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, scoreRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, titleRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, scoreRect, panelRadius, hudPanelColor)

	title = truncateWithEllipsis(face, title, titleRect.Dx()-panelPaddingX*2)
	drawCenteredString(drawer, titleRect, title, hudTextPrimary)
	drawCenteredString(drawer, scoreRect, score, hudTextPrimary)

	if turn != "" {
		drawRoundedPanel(img, turnRect, panelRadius, hudTurnPanelColor)
		turn = truncateWithEllipsis(face, turn, turnRect.Dx()-panelPaddingX*2)
		drawCenteredString(drawer, turnRect, turn, hudTurnTextColor)
	}
}
