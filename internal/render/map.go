// Package render turns run records into an HTML map with one marker per camera.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path"

	"github.com/i474232898/cctv-weather/internal/weather"
)

const (
	centerLat = 37.5
	centerLon = 127.0
	zoom      = 10
	iconSize  = 30
)

type marker struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Visual   string  `json:"visual"`
	Forecast string  `json:"forecast"`
	Icon     string  `json:"icon"`
	Mismatch bool    `json:"mismatch"`
}

type mapData struct {
	Title     string
	CenterLat float64
	CenterLon float64
	Zoom      int
	IconSize  int
	Markers   []marker
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
var size = {{.IconSize}};
var markers = {{.Markers}};
markers.forEach(function (m) {
  var icon = L.icon({iconUrl: m.icon, iconSize: [size, size]});
  var popup = document.createElement('div');
  var title = document.createElement('b');
  title.textContent = m.name;
  popup.appendChild(title);
  popup.appendChild(document.createElement('br'));
  popup.appendChild(document.createTextNode('CCTV: ' + m.visual));
  popup.appendChild(document.createElement('br'));
  popup.appendChild(document.createTextNode('Forecast: ' + m.forecast));
  L.marker([m.lat, m.lon], {icon: icon}).bindPopup(popup, {maxWidth: 250}).addTo(map);
});
</script>
</body>
</html>
`))

// Renderer builds the map page. IconURL is the prefix under which icon
// files are reachable from the page.
type Renderer struct {
	icons   *IconSet
	iconURL string
}

func NewRenderer(icons *IconSet, iconURL string) *Renderer {
	return &Renderer{icons: icons, iconURL: iconURL}
}

// Render writes the map page for records to w.
func (r *Renderer) Render(w io.Writer, records []weather.Record) error {
	data := mapData{
		Title:     "CCTV weather",
		CenterLat: centerLat,
		CenterLon: centerLon,
		Zoom:      zoom,
		IconSize:  iconSize,
		Markers:   make([]marker, 0, len(records)),
	}

	for _, rec := range records {
		data.Markers = append(data.Markers, marker{
			Name:     rec.Name,
			Lat:      rec.Lat,
			Lon:      rec.Lon,
			Visual:   string(rec.Visual),
			Forecast: string(rec.Forecast),
			Icon:     path.Join(r.iconURL, r.icons.Resolve(rec)),
			Mismatch: rec.Mismatch(),
		})
	}

	return mapTemplate.Execute(w, data)
}

// WriteFile renders the map to file.
func (r *Renderer) WriteFile(file string, records []weather.Record) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, records); err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	if err := os.WriteFile(file, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write map: %w", err)
	}
	return nil
}
