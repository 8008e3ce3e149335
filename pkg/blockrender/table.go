package blockrender

import (
	"github.com/beevik/etree"
	"github.com/yockii/notion_blog/pkg/logger"
	"github.com/yockii/notion_blog/pkg/notion"
)

// tableRows 优先使用table_rows，为空时从table_row子块中取行
func tableRows(b *notion.Block) []notion.TableRowPayload {
	if b.Table != nil && len(b.Table.TableRows) > 0 {
		return b.Table.TableRows
	}
	rows := make([]notion.TableRowPayload, 0, len(b.Children))
	for _, child := range b.Children {
		if child == nil || child.Type != notion.TypeTableRow || child.TableRow == nil {
			continue
		}
		rows = append(rows, *child.TableRow)
	}
	return rows
}

func (r *Renderer) renderTable(b *notion.Block, _ int) *etree.Element {
	rows := tableRows(b)
	if len(rows) == 0 {
		logger.Debug("表格没有可用的行", logger.F("id", b.ID))
		return placeholder("notion-table-empty", "Table: no table rows found")
	}

	var columnHeader, rowHeader bool
	if b.Table != nil {
		columnHeader = b.Table.HasColumnHeader
		rowHeader = b.Table.HasRowHeader
	}

	wrapper := newElement("div", "notion-table")
	table := wrapper.CreateElement("table")
	var tbody *etree.Element
	for i, row := range rows {
		header := i == 0 && columnHeader

		var tr *etree.Element
		if header {
			tr = table.CreateElement("thead").CreateElement("tr")
			tr.CreateAttr("class", "notion-table-header")
		} else {
			if tbody == nil {
				tbody = table.CreateElement("tbody")
			}
			tr = tbody.CreateElement("tr")
			if i%2 == 0 {
				tr.CreateAttr("class", "notion-table-row-even")
			} else {
				tr.CreateAttr("class", "notion-table-row-odd")
			}
		}

		for j, cell := range row.Cells {
			tag := "td"
			if header || (j == 0 && rowHeader) {
				tag = "th"
			}
			c := tr.CreateElement(tag)
			switch {
			case header:
				c.CreateAttr("scope", "col")
			case tag == "th":
				c.CreateAttr("scope", "row")
			}
			appendRichText(c, cell)
		}
	}
	return wrapper
}
