//go:build contrib

package filters

import (
	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

type grayworld struct {
	wb contrib.GrayworldWB
}

func (g *grayworld) BalanceWhite(src gocv.Mat, dst *gocv.Mat) error {
	return g.wb.BalanceWhite(src, dst)
}

func (g *grayworld) Close() error {
	return g.wb.Close()
}

func init() {
	newWhiteBalancer = func() whiteBalancer {
		return &grayworld{wb: contrib.NewGrayworldWB()}
	}
}
