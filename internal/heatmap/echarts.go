package heatmap

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spectra-data/kinetics.report/internal/spectra"
)

// maxChartCells bounds the number of cells per interactive chart so the
// generated HTML stays loadable; larger frames are strided down along the
// wavelength axis.
const maxChartCells = 20000

// RenderHTML writes one HTML page with an interactive heatmap per frame.
func RenderHTML(frames []*spectra.Frame, labels []string, title, path string) error {
	page := components.NewPage()
	page.PageTitle = title

	for i, frame := range frames {
		chart, err := heatmapChart(frame, fmt.Sprintf("%s (%s)", title, labels[i]))
		if err != nil {
			return err
		}
		page.AddCharts(chart)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return page.Render(file)
}

func heatmapChart(frame *spectra.Frame, title string) (*charts.HeatMap, error) {
	rows, cols := frame.Rows(), frame.Cols()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("empty frame for %s", title)
	}

	stride := 1
	if rows*cols > maxChartCells {
		stride = (rows*cols + maxChartCells - 1) / maxChartCells
	}

	var xLabels []string
	var data []opts.HeatMapData
	maxV := 0.0
	xIdx := 0
	for i := 0; i < rows; i += stride {
		xLabels = append(xLabels, strconv.FormatFloat(frame.Wavelengths[i], 'f', 1, 64))
		for j := 0; j < cols; j++ {
			v := frame.Data[i][j]
			if v > maxV {
				maxV = v
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{xIdx, j, v}})
		}
		xIdx++
	}
	if maxV == 0 {
		maxV = 1
	}

	yLabels := make([]string, cols)
	for j, t := range frame.Times {
		yLabels[j] = strconv.FormatFloat(t, 'f', -1, 64)
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1100px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "Wavelength (nm)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "Time (s)", Data: yLabels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxV),
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}},
		}),
	)
	hm.SetXAxis(xLabels).AddSeries("intensity", data)
	return hm, nil
}
