package templates

// BarTemplate renders a grouped bar chart (pgfplots ybar) over symbolic size
// labels. Series with no value at a label simply omit that coordinate.
const BarTemplate = `% Generated on {{.GeneratedDate}}
% {{.Title}}
{{- if .CapacityNote}}
% {{.CapacityNote}}
{{- end}}
\begin{tikzpicture}
	\begin{axis}[
		ybar,
		title={ {{.Title}} },
		xlabel={ {{.XLabel}} },
		ylabel={ {{.YLabel}} },
		symbolic x coords={ {{.SymbolicX}} },
		xtick=data,
		x tick label style={rotate=45, anchor=east},
		ymajorgrids,
		grid style=dashed,
		legend pos=north east,
	]
{{range .Series}}
\addplot+ coordinates {
{{- range .Coordinates}}
	{{.}}
{{- end}}
};
\addlegendentry{ {{.Name}} }
{{end}}
	\end{axis}
\end{tikzpicture}
`

// LineTemplate renders one marked line per series over symbolic size labels,
// used for the policy comparison charts.
const LineTemplate = `% Generated on {{.GeneratedDate}}
% {{.Title}}
{{- if .CapacityNote}}
% {{.CapacityNote}}
{{- end}}
\begin{tikzpicture}
	\begin{axis}[
		title={ {{.Title}} },
		xlabel={ {{.XLabel}} },
		ylabel={ {{.YLabel}} },
		symbolic x coords={ {{.SymbolicX}} },
		xtick=data,
		x tick label style={rotate=45, anchor=east},
		ymajorgrids,
		grid style=dashed,
		legend pos=north east,
	]
{{range .Series}}
\addplot+[mark=*] coordinates {
{{- range .Coordinates}}
	{{.}}
{{- end}}
};
\addlegendentry{ {{.Name}} }
{{end}}
	\end{axis}
\end{tikzpicture}
`
