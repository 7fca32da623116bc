package domain

// TileLayer describes a base map tile source.
type TileLayer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"max_zoom"`
}

// ImageOverlay is a raster anchored to a fixed bounding box.
type ImageOverlay struct {
	URL string `json:"url"`
	// Bounds is [[south, west], [north, east]].
	Bounds  [2][2]float64 `json:"bounds"`
	Opacity float64       `json:"opacity"`
}

// LayerSet holds the static layers that frame the marker collections.
type LayerSet struct {
	Street     TileLayer
	Satellite  TileLayer
	HeatIsland ImageOverlay
}

// DefaultLayerSet returns the OSM street map, the Esri imagery map and the
// urban heat island overlay served from heatURL.
func DefaultLayerSet(heatURL string) LayerSet {
	return LayerSet{
		Street: TileLayer{
			Name:        "OSM",
			URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a>`,
			MaxZoom:     19,
		},
		Satellite: TileLayer{
			Name:        "ESRI",
			URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
			Attribution: "© Esri",
			MaxZoom:     19,
		},
		HeatIsland: ImageOverlay{
			URL:     heatURL,
			Bounds:  [2][2]float64{{43.581, -79.639}, {43.855, -79.116}},
			Opacity: 0.65,
		},
	}
}

// LayerKind says what a tree leaf toggles.
type LayerKind string

const (
	LayerTile    LayerKind = "tile"
	LayerImage   LayerKind = "image"
	LayerMarkers LayerKind = "markers"
)

// LayerRef points a tree leaf at a renderable layer.
type LayerRef struct {
	Kind       LayerKind     `json:"kind"`
	Tile       *TileLayer    `json:"tile,omitempty"`
	Image      *ImageOverlay `json:"image,omitempty"`
	Collection CollectionKey `json:"collection,omitempty"`
	Count      int           `json:"count,omitempty"`
}

// TreeNode is one entry in the layer control. A node has either a layer or children.
type TreeNode struct {
	Label     string     `json:"label"`
	Collapsed bool       `json:"collapsed"`
	Layer     *LayerRef  `json:"layer,omitempty"`
	Children  []TreeNode `json:"children,omitempty"`
}

// ViewTree is the layer control description: one base map group and an
// ordered list of overlay groups.
type ViewTree struct {
	BaseMaps TreeNode   `json:"base_maps"`
	Overlays []TreeNode `json:"overlays"`
}

// TreeOptions tunes the site sub-group.
type TreeOptions struct {
	// ArtworkFirst lists the artwork collection before the curated sites.
	ArtworkFirst bool
}

// Tree labels.
const (
	LabelBaseMaps        = "Base Maps"
	LabelStreetView      = "Street View"
	LabelSatelliteView   = "Satellite View"
	LabelHeatMaps        = "Heat Maps"
	LabelUrbanHeatIsland = "Urban Heat Island"
	LabelCoolSpots       = "Cool Spots"
	LabelSites           = "Sites"
)

// BuildViewTree assembles the layer control. Node order is fixed:
//
//	Base Maps: Street View, Satellite View
//	Overlays:  Heat Maps: Urban Heat Island
//	           Cool Spots: Morning, Afternoon, Evening, Night, Sites
func BuildViewTree(cols *Collections, layers LayerSet, opts TreeOptions) ViewTree {
	street := layers.Street
	satellite := layers.Satellite
	heat := layers.HeatIsland

	coolSpots := make([]TreeNode, 0, len(Categories)+1)
	for _, cat := range Categories {
		coolSpots = append(coolSpots, collectionNode(cols, cat.Key()))
	}

	sites := []TreeNode{collectionNode(cols, CollectionBentway), collectionNode(cols, CollectionArtwork)}
	if opts.ArtworkFirst {
		sites[0], sites[1] = sites[1], sites[0]
	}
	coolSpots = append(coolSpots, TreeNode{Label: LabelSites, Children: sites})

	return ViewTree{
		BaseMaps: TreeNode{
			Label:     LabelBaseMaps,
			Collapsed: true,
			Children: []TreeNode{
				{Label: LabelStreetView, Layer: &LayerRef{Kind: LayerTile, Tile: &street}},
				{Label: LabelSatelliteView, Layer: &LayerRef{Kind: LayerTile, Tile: &satellite}},
			},
		},
		Overlays: []TreeNode{
			{
				Label:     LabelHeatMaps,
				Collapsed: true,
				Children: []TreeNode{
					{Label: LabelUrbanHeatIsland, Layer: &LayerRef{Kind: LayerImage, Image: &heat}},
				},
			},
			{
				Label:     LabelCoolSpots,
				Collapsed: false,
				Children:  coolSpots,
			},
		},
	}
}

func collectionNode(cols *Collections, key CollectionKey) TreeNode {
	ref := &LayerRef{Kind: LayerMarkers, Collection: key}
	if col, ok := cols.Get(key); ok {
		ref.Count = len(col.Markers)
	}
	return TreeNode{Label: key.Label(), Layer: ref}
}

// Paths flattens the tree into slash-separated label paths in display order,
// e.g. "Overlays/Cool Spots/Morning".
func (t ViewTree) Paths() []string {
	var out []string
	walkPaths(t.BaseMaps, "", &out)
	for _, n := range t.Overlays {
		walkPaths(n, "Overlays", &out)
	}
	return out
}

func walkPaths(n TreeNode, prefix string, out *[]string) {
	path := n.Label
	if prefix != "" {
		path = prefix + "/" + n.Label
	}
	*out = append(*out, path)
	for _, c := range n.Children {
		walkPaths(c, path, out)
	}
}
