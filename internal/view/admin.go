package view

import (
	"strconv"

	"enterprise-portal/internal/catalogue"
	"enterprise-portal/internal/models"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// AdminView is the transient state of the admin panel: an open form and a
// pending delete confirmation.
type AdminView struct {
	Form          *ItemForm
	ConfirmDelete string
}

// ItemForm holds the raw values of the create/edit form. ID is empty when
// creating.
type ItemForm struct {
	ID           string
	Name         string
	Icon         string
	Type         models.ItemType
	Order        string
	EmbedURL     string
	ClientID     string
	ClientSecret string
	TenantID     string
	WorkspaceID  string
	ReportID     string
}

func NewItemForm(itemType models.ItemType) ItemForm {
	if itemType != models.ItemTypePowerBI {
		itemType = models.ItemTypeCopilot
	}
	return ItemForm{Icon: catalogue.DefaultIcon, Type: itemType}
}

func FormFromItem(item models.MenuItem) ItemForm {
	form := ItemForm{
		ID:    item.ID,
		Name:  item.Name,
		Icon:  item.Icon,
		Type:  item.Type(),
		Order: strconv.Itoa(item.Order),
	}
	switch cfg := item.Config.(type) {
	case models.CopilotConfig:
		form.EmbedURL = cfg.EmbedURL
	case models.PowerBIConfig:
		form.ClientID = cfg.ClientID
		form.ClientSecret = cfg.ClientSecret
		form.TenantID = cfg.TenantID
		form.WorkspaceID = cfg.WorkspaceID
		form.ReportID = cfg.ReportID
	}
	return form
}

func adminPanel(p Page, items []models.MenuItem, admin AdminView) Node {
	return Div(Class("admin-panel"),
		Div(Class("admin-header"),
			H1(Text("Menu Management")),
			P(Text("Add, edit, and organize menu items")),
			A(Href("/admin?new=copilot"), Class("btn btn-primary"), Text("Add Copilot")),
			A(Href("/admin?new=powerbi"), Class("btn btn-primary"), Text("Add Power BI")),
		),
		If(admin.Form != nil, itemForm(p, admin.Form)),
		If(len(items) == 0, Div(Class("empty-state"),
			H3(Text("No Menu Items")),
			P(Text("Create your first menu item to get started")),
		)),
		Div(Class("item-list"), Group(itemCards(p, items, admin.ConfirmDelete))),
	)
}

func itemCards(p Page, items []models.MenuItem, confirmDelete string) []Node {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	cards := make([]Node, 0, len(items))
	for i, item := range items {
		typeLabel := "Copilot Studio"
		if item.Type() == models.ItemTypePowerBI {
			typeLabel = "Power BI Report"
		}
		cards = append(cards, Div(Class("item-card"), Data("item-id", item.ID),
			Div(Class("item-info"),
				icon(item.Icon),
				H3(Text(item.Name)),
				Span(Class("badge"), Text(typeLabel)),
			),
			Div(Class("item-actions"),
				If(i > 0, reorderForm(p, "Move up", swapped(ids, i, i-1))),
				If(i < len(items)-1, reorderForm(p, "Move down", swapped(ids, i, i+1))),
				A(Href("/admin?edit="+item.ID), Class("btn"), Title("Edit"), Text("Edit")),
				A(Href("/admin?confirm="+item.ID), Class("btn btn-danger"), Title("Delete"), Text("Delete")),
			),
			If(confirmDelete == item.ID, Div(Class("delete-confirm"),
				P(Text("Delete this item?")),
				Form(Method("post"), Action("/admin/items/"+item.ID+"/delete"),
					csrfField(p),
					Button(Type("submit"), Class("btn btn-danger"), Text("Delete")),
				),
				A(Href("/admin"), Class("btn"), Text("Cancel")),
			)),
		))
	}
	return cards
}

func reorderForm(p Page, label string, ids []string) Node {
	fields := make([]Node, 0, len(ids)+2)
	fields = append(fields, Method("post"), Action("/admin/items/reorder"), csrfField(p))
	for _, id := range ids {
		fields = append(fields, Input(Type("hidden"), Name("ids"), Value(id)))
	}
	fields = append(fields, Button(Type("submit"), Class("btn"), Text(label)))
	return Form(fields...)
}

func swapped(ids []string, i, j int) []string {
	out := append([]string(nil), ids...)
	out[i], out[j] = out[j], out[i]
	return out
}

func itemForm(p Page, form *ItemForm) Node {
	action := "/admin/items"
	heading := "Add Menu Item"
	if form.ID != "" {
		action = "/admin/items/" + form.ID
		heading = "Edit Menu Item"
	}
	return Form(Class("item-form"), Method("post"), Action(action),
		csrfField(p),
		H2(Text(heading)),
		H3(Text("Basic Information")),
		Label(For("name"), Text("Name")),
		Input(ID("name"), Name("name"), Value(form.Name), Placeholder("e.g., Sales Dashboard"), Required()),
		Label(Text("Icon")),
		Div(Class("icon-picker"),
			Map(catalogue.AvailableIcons, func(name string) Node {
				return Label(
					Input(Type("radio"), Name("icon"), Value(name), If(name == form.Icon, Checked())),
					icon(name),
					Span(Text(name)),
				)
			}),
		),
		Label(For("type"), Text("Type")),
		Select(ID("type"), Name("type"),
			Option(Value(string(models.ItemTypeCopilot)), If(form.Type == models.ItemTypeCopilot, Selected()), Text("Copilot Studio")),
			Option(Value(string(models.ItemTypePowerBI)), If(form.Type == models.ItemTypePowerBI, Selected()), Text("Power BI")),
		),
		Label(For("order"), Text("Order")),
		Input(ID("order"), Type("number"), Name("order"), Value(form.Order), Placeholder(strconv.Itoa(catalogue.DefaultOrder))),
		If(form.Type == models.ItemTypeCopilot, Group{
			H3(Text("Copilot Configuration")),
			Label(For("embedUrl"), Text("Embed URL")),
			Input(ID("embedUrl"), Type("url"), Name("embedUrl"), Value(form.EmbedURL), Placeholder("https://copilotstudio.microsoft.com/environments/..."), Required()),
		}),
		If(form.Type == models.ItemTypePowerBI, Group{
			H3(Text("Power BI Configuration")),
			Label(For("clientId"), Text("Client ID")),
			Input(ID("clientId"), Name("clientId"), Value(form.ClientID), Placeholder("xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"), Required()),
			Label(For("tenantId"), Text("Tenant ID")),
			Input(ID("tenantId"), Name("tenantId"), Value(form.TenantID), Placeholder("xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"), Required()),
			Label(For("clientSecret"), Text("Client Secret")),
			Input(ID("clientSecret"), Type("password"), Name("clientSecret"), Value(form.ClientSecret), Placeholder("Your client secret"), Required()),
			Label(For("workspaceId"), Text("Workspace ID")),
			Input(ID("workspaceId"), Name("workspaceId"), Value(form.WorkspaceID), Placeholder("xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"), Required()),
			Label(For("reportId"), Text("Report ID")),
			Input(ID("reportId"), Name("reportId"), Value(form.ReportID), Placeholder("xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"), Required()),
		}),
		Div(Class("form-actions"),
			Button(Type("submit"), Class("btn btn-primary"), Text("Save")),
			A(Href("/admin"), Class("btn"), Text("Cancel")),
		),
	)
}
