package style

// Shared style fragments.
const (
	archimate = "html=1;outlineConnect=0;whiteSpace=wrap;"
	appFill   = "fillColor=#99ffff;strokeColor=#000000;"
	techFill  = "fillColor=#AFFFAF;strokeColor=#000000;"
	bizFill   = "fillColor=#ffff99;strokeColor=#000000;"
	elbow     = "edgeStyle=elbowEdgeStyle;elbow=vertical;"
)

// UML element styles, shared by the bare and "uml:"-prefixed keys.
const (
	umlComponent = archimate + "fillColor=#99ffff;shape=mxgraph.archimate3.application;appType=comp;archiType=square;"
	umlActivity  = archimate + "fillColor=#99ffff;shape=mxgraph.archimate3.application;appType=serv;archiType=rounded;"
	umlClass     = archimate + "fillColor=#99ffff;shape=mxgraph.archimate3.businessObject;overflow=fill;"
	umlNote      = "rounded=0;whiteSpace=wrap;html=1;"
	umlText      = umlNote + "strokeColor=none;align=left;"
)

// Well-known keys of the default table.
const (
	ApplicationComponent = "ArchiMate_ApplicationComponent"
	ApplicationFunction  = "ArchiMate_ApplicationFunction"
	DataObject           = "ArchiMate_DataObject"
	TechnologyObject     = "ArchiMate_Node"
	Note                 = "Note"
	Text                 = "Text"
)

var defaults = map[string]string{
	// ArchiMate application layer
	ApplicationComponent:             archimate + appFill + "shape=mxgraph.archimate3.application;appType=comp;archiType=square;",
	ApplicationFunction:              archimate + appFill + "shape=mxgraph.archimate3.application;appType=func;archiType=rounded;",
	"ArchiMate_ApplicationService":   archimate + appFill + "shape=mxgraph.archimate3.application;appType=serv;archiType=rounded;",
	"ArchiMate_ApplicationInterface": archimate + appFill + "shape=mxgraph.archimate3.application;appType=interface;archiType=square;",
	"ArchiMate_ApplicationProcess":   archimate + appFill + "shape=mxgraph.archimate3.application;appType=proc;archiType=rounded;",
	DataObject:                       archimate + appFill + "shape=mxgraph.archimate3.businessObject;overflow=fill;",

	// ArchiMate technology layer
	TechnologyObject:                 archimate + techFill + "shape=mxgraph.archimate3.tech;techType=node;",
	"ArchiMate_Device":               archimate + techFill + "shape=mxgraph.archimate3.tech;techType=device;",
	"ArchiMate_SystemSoftware":       archimate + techFill + "shape=mxgraph.archimate3.application;appType=sysSw;archiType=square;",
	"ArchiMate_TechnologyService":    archimate + techFill + "shape=mxgraph.archimate3.application;appType=serv;archiType=rounded;",
	"ArchiMate_Artifact":             archimate + techFill + "shape=mxgraph.archimate3.application;appType=artifact;archiType=square;",
	"ArchiMate_CommunicationNetwork": archimate + techFill + "shape=mxgraph.archimate3.application;appType=netw;archiType=square;",
	"ArchiMate_TechnologyObject":     archimate + techFill + "shape=mxgraph.archimate3.tech;techType=node;",

	// ArchiMate business layer
	"ArchiMate_BusinessActor":   archimate + bizFill + "shape=mxgraph.archimate3.application;appType=actor;archiType=square;",
	"ArchiMate_BusinessProcess": archimate + bizFill + "shape=mxgraph.archimate3.application;appType=proc;archiType=rounded;",
	"ArchiMate_BusinessObject":  archimate + bizFill + "shape=mxgraph.archimate3.businessObject;overflow=fill;",

	// UML elements
	"Component":     umlComponent,
	"uml:Component": umlComponent,
	"Activity":      umlActivity,
	"uml:Activity":  umlActivity,
	"Class":         umlClass,
	"uml:Class":     umlClass,
	"Package":       "shape=folder;fontStyle=1;tabWidth=80;tabHeight=20;tabPosition=left;html=1;verticalAlign=top;align=left;spacingLeft=8;",
	"Boundary":      "rounded=0;whiteSpace=wrap;html=1;dashed=1;fillColor=none;verticalAlign=top;",
	Note:            umlNote,
	"uml:Note":      umlNote,
	"Comment":       umlNote,
	Text:            umlText,
	"uml:Text":      umlText,

	// Connectors
	"Association":    "endArrow=open;endFill=1;endSize=12;html=1;",
	"Dependency":     "endArrow=open;endSize=12;dashed=1;html=1;",
	"Generalization": "endArrow=block;endFill=0;endSize=12;html=1;",
	"Realisation":    "endArrow=block;endFill=0;dashed=1;html=1;" + elbow,
	"realization":    "endArrow=block;endFill=0;dashed=1;html=1;" + elbow,
	"assignment":     "endArrow=block;endFill=1;startArrow=oval;startFill=1;html=1;" + elbow,
	"serving":        "endArrow=open;endFill=0;html=1;" + elbow,
	"flow":           "endArrow=block;endFill=1;dashed=1;html=1;" + elbow,
	"triggering":     "endArrow=block;endFill=1;html=1;" + elbow,
	"composition":    "endArrow=none;startArrow=diamondThin;startFill=1;startSize=10;html=1;" + elbow,
	"aggregation":    "endArrow=none;startArrow=diamondThin;startFill=0;startSize=10;html=1;" + elbow,
	"access":         "endArrow=open;endFill=0;dashed=1;dashPattern=1 4;html=1;",
	"ControlFlow":    "endArrow=open;endFill=0;html=1;",
	"NoteLink":       "endArrow=none;dashed=1;html=1;",
}

// Default returns the built-in table.
func Default() Table { return NewTable(defaults) }
